package certgen

import (
	"crypto/ecdsa"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFiles(t *testing.T, certPEM, keyPEM []byte) (string, string) {
	t.Helper()
	dir := t.TempDir()
	certPath := filepath.Join(dir, "cert.pem")
	keyPath := filepath.Join(dir, "key.pem")
	if err := os.WriteFile(certPath, certPEM, 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(keyPath, keyPEM, 0o600); err != nil {
		t.Fatal(err)
	}
	return certPath, keyPath
}

func TestGenerateCA(t *testing.T) {
	certPEM, keyPEM, err := GenerateCA("Canteen Dev CA", 24*time.Hour)
	if err != nil {
		t.Fatalf("GenerateCA: %v", err)
	}

	caCert, caKey, err := ParseCACredentials(certPEM, keyPEM)
	if err != nil {
		t.Fatalf("ParseCACredentials: %v", err)
	}
	if !caCert.IsCA || !caCert.BasicConstraintsValid {
		t.Error("expected a CA certificate")
	}
	if caCert.Subject.CommonName != "Canteen Dev CA" {
		t.Errorf("CommonName = %q", caCert.Subject.CommonName)
	}
	if caCert.KeyUsage&x509.KeyUsageCertSign == 0 {
		t.Error("CA cannot sign certificates")
	}
	if _, ok := caKey.(*ecdsa.PrivateKey); !ok {
		t.Errorf("key type = %T; want *ecdsa.PrivateKey", caKey)
	}
}

func TestLoadCACredentials_Success(t *testing.T) {
	certPEM, keyPEM, err := GenerateCA("Test CA", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	certPath, keyPath := writeFiles(t, certPEM, keyPEM)

	caCert, caKey, err := LoadCACredentials(certPath, keyPath)
	if err != nil {
		t.Fatalf("LoadCACredentials: %v", err)
	}
	priv, ok := caKey.(*ecdsa.PrivateKey)
	if !ok {
		t.Fatalf("key type = %T", caKey)
	}
	if !priv.PublicKey.Equal(caCert.PublicKey) {
		t.Error("key does not match certificate")
	}
}

func TestLoadCACredentials_Errors(t *testing.T) {
	certPEM, keyPEM, err := GenerateCA("Test CA", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	goodCert, goodKey := writeFiles(t, certPEM, keyPEM)
	badCert, badKey := writeFiles(t, []byte("not pem"), pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: []byte{1}}))

	tests := []struct {
		name       string
		cert, key  string
		wantSubstr string
	}{
		{"missing cert", filepath.Join(t.TempDir(), "nope"), goodKey, "read ca cert"},
		{"missing key", goodCert, filepath.Join(t.TempDir(), "nope"), "read ca key"},
		{"bad cert PEM", badCert, goodKey, "invalid CA cert PEM"},
		{"unsupported key", goodCert, badKey, "unsupported key type"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := LoadCACredentials(tc.cert, tc.key)
			if err == nil || !strings.Contains(err.Error(), tc.wantSubstr) {
				t.Errorf("error = %v; want substring %q", err, tc.wantSubstr)
			}
		})
	}
}

func TestGenerateServerCertificate(t *testing.T) {
	caPEM, caKeyPEM, err := GenerateCA("Test CA", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	caCert, caKey, err := ParseCACredentials(caPEM, caKeyPEM)
	if err != nil {
		t.Fatal(err)
	}

	certPEM, keyPEM, err := GenerateServerCertificate([]string{"localhost", "127.0.0.1"}, time.Hour, caCert, caKey)
	if err != nil {
		t.Fatalf("GenerateServerCertificate: %v", err)
	}

	block, _ := pem.Decode(certPEM)
	if block == nil {
		t.Fatal("certificate is not PEM")
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		t.Fatal(err)
	}
	if err := cert.CheckSignatureFrom(caCert); err != nil {
		t.Errorf("not signed by CA: %v", err)
	}
	if len(cert.DNSNames) != 1 || cert.DNSNames[0] != "localhost" {
		t.Errorf("DNSNames = %v", cert.DNSNames)
	}
	if len(cert.IPAddresses) != 1 || !cert.IPAddresses[0].Equal(net.ParseIP("127.0.0.1")) {
		t.Errorf("IPAddresses = %v", cert.IPAddresses)
	}

	roots := x509.NewCertPool()
	roots.AddCert(caCert)
	if _, err := cert.Verify(x509.VerifyOptions{DNSName: "localhost", Roots: roots}); err != nil {
		t.Errorf("verify: %v", err)
	}

	if _, err := tls.X509KeyPair(certPEM, keyPEM); err != nil {
		t.Errorf("key pair mismatch: %v", err)
	}
}

func TestGenerateServerCertificate_NoHosts(t *testing.T) {
	if _, _, err := GenerateServerCertificate(nil, time.Hour, nil, nil); err == nil {
		t.Error("expected error for empty host list")
	}
}

func TestServerTLSConfig(t *testing.T) {
	caPEM, caKeyPEM, err := GenerateCA("Test CA", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	caCert, caKey, err := ParseCACredentials(caPEM, caKeyPEM)
	if err != nil {
		t.Fatal(err)
	}
	certPEM, keyPEM, err := GenerateServerCertificate([]string{"localhost"}, time.Hour, caCert, caKey)
	if err != nil {
		t.Fatal(err)
	}
	certPath, keyPath := writeFiles(t, certPEM, keyPEM)

	cfg, err := ServerTLSConfig(certPath, keyPath)
	if err != nil {
		t.Fatalf("ServerTLSConfig: %v", err)
	}
	if cfg.MinVersion != tls.VersionTLS12 {
		t.Errorf("MinVersion = %x", cfg.MinVersion)
	}
	if len(cfg.Certificates) != 1 {
		t.Errorf("got %d certificates", len(cfg.Certificates))
	}

	if _, err := ServerTLSConfig("", ""); err == nil {
		t.Error("expected error without files")
	}
	if _, err := ServerTLSConfig(keyPath, certPath); err == nil {
		t.Error("expected error for swapped files")
	}
}
