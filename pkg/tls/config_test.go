package tls

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig_DisabledBuildsNil(t *testing.T) {
	config := DefaultConfig()

	tlsConfig, err := config.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if tlsConfig != nil {
		t.Error("disabled config must build a nil tls.Config")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"disabled", Config{Enabled: false}, false},
		{"missing cert", Config{Enabled: true, KeyFile: "k"}, true},
		{"missing key", Config{Enabled: true, CertFile: "c"}, true},
		{"bad version", Config{Enabled: true, CertFile: "c", KeyFile: "k", MinVersion: "SSL3"}, true},
		{"valid", Config{Enabled: true, CertFile: "c", KeyFile: "k", MinVersion: "TLS1.3"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_BuildMissingFiles(t *testing.T) {
	config := &Config{
		Enabled:  true,
		CertFile: "/nonexistent/server.crt",
		KeyFile:  "/nonexistent/server.key",
	}

	if _, err := config.Build(); err == nil {
		t.Error("expected an error for missing certificate files")
	}
}

func TestConfig_BuildWithCertificate(t *testing.T) {
	certFile, keyFile := writeSelfSignedCert(t)

	config := &Config{
		Enabled:    true,
		CertFile:   certFile,
		KeyFile:    keyFile,
		MinVersion: "TLS1.3",
	}

	tlsConfig, err := config.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(tlsConfig.Certificates) != 1 {
		t.Error("expected the certificate to be loaded")
	}
	if tlsConfig.MinVersion != tls.VersionTLS13 {
		t.Errorf("expected TLS1.3 minimum, got %x", tlsConfig.MinVersion)
	}
}

func writeSelfSignedCert(t *testing.T) (certFile, keyFile string) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}

	template := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "localhost"},
		NotBefore:    time.Now(),
		NotAfter:     time.Now().Add(time.Hour),
		DNSNames:     []string{"localhost"},
	}

	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("failed to create certificate: %v", err)
	}

	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		t.Fatalf("failed to marshal key: %v", err)
	}

	dir := t.TempDir()
	certFile = filepath.Join(dir, "server.crt")
	keyFile = filepath.Join(dir, "server.key")

	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER})

	if err := os.WriteFile(certFile, certPEM, 0600); err != nil {
		t.Fatalf("failed to write cert: %v", err)
	}
	if err := os.WriteFile(keyFile, keyPEM, 0600); err != nil {
		t.Fatalf("failed to write key: %v", err)
	}

	return certFile, keyFile
}
