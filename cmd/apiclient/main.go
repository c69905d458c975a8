// apiclient registra un cliente de la API: genera el client_secret, lo hashea con bcrypt y lo
// inserta en nfse_api_clients (con --database-url) o imprime la entrada para API_CLIENTS.
//
// Uso: go run ./cmd/apiclient --id erp --tax-id 11222333000181 [--database-url postgres://...]
package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jhoicas/nfse-emissor/internal/application/auth"
	"github.com/jhoicas/nfse-emissor/internal/domain/entity"
	"github.com/jhoicas/nfse-emissor/internal/infrastructure/postgres"
	"github.com/jhoicas/nfse-emissor/pkg/config"
	"github.com/jhoicas/nfse-emissor/pkg/logger"
	"github.com/jhoicas/nfse-emissor/pkg/nfse"
)

func main() {
	os.Exit(run())
}

func run() int {
	flags := pflag.NewFlagSet("apiclient", pflag.ExitOnError)
	flags.String("id", "", "client_id")
	flags.String("name", "", "nombre descriptivo (por defecto el id)")
	flags.String("tax-id", "", "CNPJ/CPF autorizado; vacío = cualquier prestador")
	flags.String("database-url", "", "PostgreSQL donde registrar el cliente (DATABASE_URL)")
	_ = flags.Parse(os.Args[1:])

	v := viper.New()
	_ = v.BindPFlags(flags)
	_ = v.BindEnv("database-url", "DATABASE_URL")

	id := strings.TrimSpace(v.GetString("id"))
	if id == "" || strings.ContainsAny(id, ":,") {
		fmt.Fprintln(os.Stderr, "uso: apiclient --id <client_id> [--tax-id <cnpj/cpf>] [--database-url <url>]")
		return 2
	}
	taxID := nfse.OnlyDigits(v.GetString("tax-id"))
	if taxID != "" && !nfse.ValidCNPJ(taxID) && !nfse.ValidCPF(taxID) {
		fmt.Fprintf(os.Stderr, "tax-id %s no es un CNPJ/CPF válido\n", taxID)
		return 2
	}
	name := v.GetString("name")
	if name == "" {
		name = id
	}

	secret, err := newSecret()
	if err != nil {
		fmt.Fprintf(os.Stderr, "generar secreto: %v\n", err)
		return 1
	}
	hash, err := auth.HashSecret(secret)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hashear secreto: %v\n", err)
		return 1
	}

	if dbURL := v.GetString("database-url"); dbURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		log := logger.New(logger.Config{Env: "development", Level: "warn"})

		pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dbURL, MaxConns: 1}, log.Component("postgres"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "conexión a PostgreSQL: %v\n", err)
			return 1
		}
		defer pool.Close()
		if err := postgres.Migrate(ctx, pool); err != nil {
			fmt.Fprintf(os.Stderr, "aplicar esquema: %v\n", err)
			return 1
		}
		client := &entity.APIClient{ID: id, SecretHash: hash, Name: name, TaxID: taxID}
		if err := postgres.NewAPIClientRepository(pool).Create(ctx, client); err != nil {
			fmt.Fprintf(os.Stderr, "registrar cliente: %v\n", err)
			return 1
		}
		fmt.Printf("Cliente %s registrado en nfse_api_clients.\n", id)
	} else {
		entry := id + ":" + hash
		if taxID != "" {
			entry += ":" + taxID
		}
		fmt.Println("Agregar a API_CLIENTS (separar clientes con coma):")
		fmt.Println(entry)
	}

	fmt.Printf("\nclient_id:     %s\nclient_secret: %s\n", id, secret)
	fmt.Println("Guarde el secreto ahora; no se puede recuperar.")
	return 0
}

// newSecret 32 bytes aleatorios en Base64 URL sin padding.
func newSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
