// certcheck diagnostica un certificado A1 (PKCS#12) antes de configurarlo en el emisor:
// indica qué estrategia lo decodificó, el titular y la inscripción usada como autor de eventos.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jhoicas/nfse-emissor/internal/infrastructure/nfse/signer"
	"github.com/jhoicas/nfse-emissor/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	flags := pflag.NewFlagSet("certcheck", pflag.ExitOnError)
	flags.String("cert", "", "ruta del contenedor .pfx/.p12 (NFSE_CERT_PATH)")
	flags.String("password", "", "contraseña del contenedor (NFSE_CERT_PASSWORD)")
	flags.String("openssl", "openssl", "binario openssl para contenedores legacy (NFSE_OPENSSL_BINARY)")
	flags.Bool("verbose", false, "log de cada estrategia intentada")
	_ = flags.Parse(os.Args[1:])

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindPFlag("nfse.cert.path", flags.Lookup("cert"))
	_ = v.BindPFlag("nfse.cert.password", flags.Lookup("password"))
	_ = v.BindPFlag("nfse.openssl.binary", flags.Lookup("openssl"))
	_ = v.BindEnv("nfse.cert.path", "NFSE_CERT_PATH")
	_ = v.BindEnv("nfse.cert.password", "NFSE_CERT_PASSWORD")
	_ = v.BindEnv("nfse.openssl.binary", "NFSE_OPENSSL_BINARY")

	level := "warn"
	if verbose, _ := flags.GetBool("verbose"); verbose {
		level = "debug"
	}
	log := logger.New(logger.Config{Env: "development", Level: level})

	path := v.GetString("nfse.cert.path")
	if path == "" {
		fmt.Fprintln(os.Stderr, "uso: certcheck --cert <archivo.pfx> [--password <clave>]")
		return 2
	}

	fmt.Println("DIAGNÓSTICO DE CERTIFICADO A1")
	fmt.Println("-----------------------------")
	fmt.Printf("Archivo: %s\n", path)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	loader := signer.NewCertificateLoader(
		signer.WithOpenSSLBinary(v.GetString("nfse.openssl.binary")),
		signer.WithLogger(log.Component("certificate")),
	)
	km, err := loader.LoadFile(ctx, path, v.GetString("nfse.cert.password"))
	if err != nil {
		fmt.Printf("\nERROR: %v\n", err)
		return 1
	}
	defer km.Close()

	cert := km.Certificate
	fmt.Printf("Estrategia:  %s\n", km.Strategy)
	fmt.Printf("Titular:     %s\n", cert.Subject.CommonName)
	fmt.Printf("Emisor:      %s\n", cert.Issuer.CommonName)
	fmt.Printf("Válido:      %s a %s\n", cert.NotBefore.Format(time.DateOnly), cert.NotAfter.Format(time.DateOnly))
	fmt.Printf("Intermedias: %d\n", len(km.CACerts))

	author, err := signer.AuthorFromCertificate(cert)
	if err != nil {
		fmt.Printf("Autor:       no identificado (%v)\n", err)
	} else {
		fmt.Printf("Autor:       %s %s\n", author.Tag(), author.Digits())
	}

	if time.Now().After(cert.NotAfter) {
		fmt.Println("\nATENCIÓN: el certificado está vencido; el ADN rechazará la conexión mTLS.")
		return 1
	}
	fmt.Println("\nOK: el certificado y la contraseña son correctos.")
	return 0
}
