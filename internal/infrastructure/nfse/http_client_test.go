package nfse_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/nfse-emissor/internal/domain"
	"github.com/jhoicas/nfse-emissor/internal/infrastructure/nfse"
	"github.com/jhoicas/nfse-emissor/internal/infrastructure/nfse/signer/signertest"
	pkgnfse "github.com/jhoicas/nfse-emissor/pkg/nfse"
)

func newClient(t *testing.T, srv *httptest.Server, opts ...nfse.ClientOption) *nfse.ADNClient {
	t.Helper()
	base := []nfse.ClientOption{nfse.WithBaseURL(srv.URL), nfse.WithHTTPClient(srv.Client()), nfse.WithMaxRetries(2)}
	return nfse.NewADNClient(pkgnfse.EnvironmentRestricted, nfse.NewEnvelopeCodec(), append(base, opts...)...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestBaseURLFor(t *testing.T) {
	assert.Equal(t, nfse.BaseURLProduction, nfse.BaseURLFor(pkgnfse.EnvironmentProduction))
	assert.Equal(t, nfse.BaseURLRestricted, nfse.BaseURLFor(pkgnfse.EnvironmentRestricted))
}

func TestSubmitDPS_Aceptada(t *testing.T) {
	codec := nfse.NewEnvelopeCodec()
	nfseXML, err := codec.Encode([]byte("<NFSe/>"))
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/nfse", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body nfse.DPSRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		xml, err := codec.Decode(body.DPSXMLGZipB64)
		assert.NoError(t, err)
		assert.Equal(t, signedSample, string(xml))

		writeJSON(w, http.StatusCreated, map[string]any{
			"chaveAcesso":    testAccessKey,
			"idDps":          "DPS1",
			"nfseXmlGZipB64": nfseXML,
		})
	}))
	defer srv.Close()

	res, err := newClient(t, srv).SubmitDPS(context.Background(), []byte(signedSample))
	require.NoError(t, err)
	assert.True(t, res.Accepted)
	assert.Equal(t, http.StatusCreated, res.Status)
	assert.Equal(t, testAccessKey, res.AccessKey)
	assert.Equal(t, "<NFSe/>", string(res.NFSeXML))
}

func TestSubmitDPS_RechazoDeNegocio(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"idDps": "DPS1",
			"erros": []map[string]string{{"codigo": "E0014", "descricao": "DPS já existente"}},
		})
	}))
	defer srv.Close()

	res, err := newClient(t, srv).SubmitDPS(context.Background(), []byte(signedSample))
	require.NoError(t, err, "un 400 con lista de erros es un rechazo, no un fallo de transporte")
	assert.False(t, res.Accepted)
	assert.Equal(t, "E0014: DPS já existente", res.Errors)
}

func TestSubmitDPS_ErrorDelServidor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "indisponível", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newClient(t, srv).SubmitDPS(context.Background(), []byte(signedSample))
	require.ErrorIs(t, err, domain.ErrTransport)

	var te *domain.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusInternalServerError, te.Status)
	assert.Contains(t, string(te.Body), "indisponível")
}

func TestSend_Reintenta429(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"chaveAcesso": testAccessKey})
	}))
	defer srv.Close()

	res, err := newClient(t, srv).SubmitDPS(context.Background(), []byte(signedSample))
	require.NoError(t, err)
	assert.True(t, res.Accepted)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestSend_429AgotaReintentos(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newClient(t, srv, nfse.WithMaxRetries(1)).SubmitDPS(context.Background(), []byte(signedSample))
	var te *domain.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusTooManyRequests, te.Status)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls), "1 intento + 1 reintento")
}

func TestSend_RespetaRetryAfter(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "30")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"chaveAcesso": testAccessKey})
	}))
	defer srv.Close()

	clock := clockwork.NewFakeClock()
	client := newClient(t, srv, nfse.WithClock(clock))

	done := make(chan error, 1)
	go func() {
		_, err := client.GetNFSe(context.Background(), testAccessKey)
		done <- err
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, clock.BlockUntilContext(ctx, 1), "el cliente debe esperar en el reloj")
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls), "no debe reintentar antes de Retry-After")

	clock.Advance(30 * time.Second)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-ctx.Done():
		t.Fatal("el reintento no ocurrió tras avanzar el reloj")
	}
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestSubmitEvent_RutaYCuerpo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/nfse/"+testAccessKey+"/eventos", r.URL.Path)
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Contains(t, body, "pedidoRegistroEventoXmlGZipB64")
		writeJSON(w, http.StatusCreated, map[string]any{})
	}))
	defer srv.Close()

	res, err := newClient(t, srv).SubmitEvent(context.Background(), testAccessKey, []byte(signedSample))
	require.NoError(t, err)
	assert.True(t, res.Accepted)
}

func TestWithCertificate_ConservaDestino(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		writeJSON(w, http.StatusOK, map[string]any{"chaveAcesso": testAccessKey})
	}))
	defer srv.Close()

	cred := signertest.NewCredential(t, signertest.DefaultCN)
	submitter := newClient(t, srv).WithCertificate(cred.TLSCertificate())

	res, err := submitter.GetNFSe(context.Background(), testAccessKey)
	require.NoError(t, err)
	assert.Equal(t, testAccessKey, res.AccessKey)
}

func TestSend_ContextoCancelado(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{})
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newClient(t, srv).GetNFSe(ctx, testAccessKey)
	var te *domain.TransportError
	require.ErrorAs(t, err, &te)
	assert.Zero(t, te.Status)
	assert.ErrorIs(t, err, context.Canceled)
}
