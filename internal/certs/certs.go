// Package certs manages the TLS certificate served by the cranewatch HTTP
// listener.
//
// In files mode the certificate is read from disk and re-read on every
// rotation check, so an external tool can replace it in place. In
// self-signed mode a private CA and a server certificate are generated into
// a directory and regenerated when they come within RotationThreshold of
// expiry. Dashboards pin the CA from ca.crt.
package certs

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// ValidityDuration is how long generated certificates are valid.
	ValidityDuration = 365 * 24 * time.Hour

	// RotationThreshold is how long before expiry a certificate is replaced.
	RotationThreshold = 30 * 24 * time.Hour

	// CAFile, CertFile and KeyFile are the file names used in self-signed mode.
	CAFile   = "ca.crt"
	CertFile = "tls.crt"
	KeyFile  = "tls.key"
)

// Mode specifies how certificates are obtained.
type Mode string

const (
	// ModeOff serves plain HTTP.
	ModeOff Mode = "off"

	// ModeFiles reads an operator supplied certificate and key.
	ModeFiles Mode = "files"

	// ModeSelfSigned generates a private CA and server certificate.
	ModeSelfSigned Mode = "self-signed"
)

// Options configures a Manager.
type Options struct {
	Mode Mode

	// CertFile and KeyFile are used in files mode.
	CertFile string
	KeyFile  string

	// Dir and Hosts are used in self-signed mode. Hosts that parse as IP
	// addresses become IP SANs, the rest DNS SANs.
	Dir   string
	Hosts []string
}

// Manager owns the current server certificate.
type Manager struct {
	opts   Options
	logger *zap.Logger
	now    func() time.Time

	mu    sync.RWMutex
	cert  *tls.Certificate
	caPEM []byte
}

// NewManager creates a certificate manager. Call EnsureCertificates before
// using TLSConfig.
func NewManager(opts Options, logger *zap.Logger) *Manager {
	return &Manager{
		opts:   opts,
		logger: logger.Named("certs"),
		now:    time.Now,
	}
}

// Enabled reports whether the listener should serve TLS.
func (m *Manager) Enabled() bool {
	return m.opts.Mode != ModeOff && m.opts.Mode != ""
}

// EnsureCertificates loads or generates the server certificate.
func (m *Manager) EnsureCertificates() error {
	switch m.opts.Mode {
	case ModeOff, "":
		return nil
	case ModeFiles:
		return m.loadFiles()
	case ModeSelfSigned:
		return m.ensureSelfSigned()
	default:
		return fmt.Errorf("unknown TLS mode: %s", m.opts.Mode)
	}
}

// TLSConfig returns a server config that always presents the current
// certificate, including after rotation.
func (m *Manager) TLSConfig() *tls.Config {
	return &tls.Config{
		MinVersion:     tls.VersionTLS12,
		GetCertificate: m.getCertificate,
	}
}

// CABundle returns the PEM encoded CA of a self-signed certificate, or nil.
func (m *Manager) CABundle() []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.caPEM
}

// Leaf returns the parsed current server certificate, or nil.
func (m *Manager) Leaf() *x509.Certificate {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.cert == nil {
		return nil
	}
	return m.cert.Leaf
}

func (m *Manager) getCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.cert == nil {
		return nil, errors.New("no server certificate loaded")
	}
	return m.cert, nil
}

// NeedsRotation reports whether the certificate on disk is missing,
// unreadable or expiring within RotationThreshold. Files mode never needs
// rotation by cranewatch.
func (m *Manager) NeedsRotation() (bool, error) {
	if m.opts.Mode != ModeSelfSigned {
		return false, nil
	}
	certPEM, err := os.ReadFile(filepath.Join(m.opts.Dir, CertFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return true, nil
		}
		return false, fmt.Errorf("failed to read certificate: %w", err)
	}
	return !m.isValid(certPEM), nil
}

// StartRotationWatcher re-checks the certificate every interval until ctx
// ends. Files mode reloads from disk, self-signed mode regenerates when due.
func (m *Manager) StartRotationWatcher(ctx context.Context, interval time.Duration) {
	if !m.Enabled() {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if m.opts.Mode == ModeFiles {
					if err := m.loadFiles(); err != nil {
						m.logger.Error("Failed to reload certificate", zap.Error(err))
					}
					continue
				}
				needsRotation, err := m.NeedsRotation()
				if err != nil {
					m.logger.Error("Failed to check certificate rotation", zap.Error(err))
					continue
				}
				if needsRotation {
					m.logger.Info("Rotating certificates")
					if err := m.ensureSelfSigned(); err != nil {
						m.logger.Error("Failed to rotate certificates", zap.Error(err))
					}
				}
			}
		}
	}()
}

func (m *Manager) loadFiles() error {
	pair, err := tls.LoadX509KeyPair(m.opts.CertFile, m.opts.KeyFile)
	if err != nil {
		return fmt.Errorf("failed to load key pair: %w", err)
	}
	if pair.Leaf == nil {
		leaf, err := x509.ParseCertificate(pair.Certificate[0])
		if err != nil {
			return fmt.Errorf("failed to parse certificate: %w", err)
		}
		pair.Leaf = leaf
	}

	m.mu.Lock()
	changed := m.cert == nil || !bytes.Equal(m.cert.Certificate[0], pair.Certificate[0])
	m.cert = &pair
	m.mu.Unlock()

	if changed {
		m.logger.Info("Loaded TLS certificate",
			zap.String("file", m.opts.CertFile),
			zap.Time("expires", pair.Leaf.NotAfter))
	}
	return nil
}

func (m *Manager) ensureSelfSigned() error {
	caPath := filepath.Join(m.opts.Dir, CAFile)
	certPath := filepath.Join(m.opts.Dir, CertFile)
	keyPath := filepath.Join(m.opts.Dir, KeyFile)

	certPEM, certErr := os.ReadFile(certPath)
	keyPEM, keyErr := os.ReadFile(keyPath)
	if certErr == nil && keyErr == nil && m.isValid(certPEM) {
		caPEM, _ := os.ReadFile(caPath)
		if err := m.install(certPEM, keyPEM, caPEM); err == nil {
			m.logger.Debug("Using existing certificates", zap.String("dir", m.opts.Dir))
			return nil
		}
		m.logger.Info("Existing certificate unusable, regenerating")
	}

	m.logger.Info("Generating self-signed certificates", zap.Strings("hosts", m.opts.Hosts))
	caPEM, caKeyPEM, err := m.generateCA()
	if err != nil {
		return fmt.Errorf("failed to generate CA: %w", err)
	}
	certPEM, keyPEM, err = m.generateServerCert(caPEM, caKeyPEM)
	if err != nil {
		return fmt.Errorf("failed to generate server certificate: %w", err)
	}

	if err := os.MkdirAll(m.opts.Dir, 0o700); err != nil {
		return fmt.Errorf("failed to create certificate directory: %w", err)
	}
	for _, f := range []struct {
		path string
		data []byte
		mode os.FileMode
	}{
		{caPath, caPEM, 0o644},
		{certPath, certPEM, 0o644},
		{keyPath, keyPEM, 0o600},
	} {
		if err := os.WriteFile(f.path, f.data, f.mode); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.path, err)
		}
	}

	return m.install(certPEM, keyPEM, caPEM)
}

func (m *Manager) install(certPEM, keyPEM, caPEM []byte) error {
	pair, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return fmt.Errorf("failed to parse key pair: %w", err)
	}
	leaf, err := x509.ParseCertificate(pair.Certificate[0])
	if err != nil {
		return fmt.Errorf("failed to parse certificate: %w", err)
	}
	pair.Leaf = leaf

	m.mu.Lock()
	m.cert = &pair
	m.caPEM = caPEM
	m.mu.Unlock()
	return nil
}

// isValid checks that certPEM parses and does not expire within the
// rotation threshold.
func (m *Manager) isValid(certPEM []byte) bool {
	block, _ := pem.Decode(certPEM)
	if block == nil {
		return false
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return false
	}
	if cert.NotAfter.Before(m.now().Add(RotationThreshold)) {
		m.logger.Info("Certificate expiring soon",
			zap.Time("expires", cert.NotAfter),
			zap.Duration("threshold", RotationThreshold))
		return false
	}
	return true
}

func (m *Manager) generateCA() (certPEM, keyPEM []byte, err error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate CA key: %w", err)
	}
	serial, err := serialNumber()
	if err != nil {
		return nil, nil, err
	}

	now := m.now()
	template := &x509.Certificate{
		SerialNumber: serial,
		Subject: pkix.Name{
			Organization: []string{"cranewatch"},
			CommonName:   "cranewatch CA",
		},
		NotBefore:             now.Add(-1 * time.Hour),
		NotAfter:              now.Add(ValidityDuration),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
		MaxPathLenZero:        true,
	}

	certDER, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create CA certificate: %w", err)
	}

	certPEM = pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER})
	keyPEM = pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	return certPEM, keyPEM, nil
}

func (m *Manager) generateServerCert(caCertPEM, caKeyPEM []byte) (certPEM, keyPEM []byte, err error) {
	caBlock, _ := pem.Decode(caCertPEM)
	if caBlock == nil {
		return nil, nil, errors.New("failed to decode CA certificate PEM")
	}
	caCert, err := x509.ParseCertificate(caBlock.Bytes)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse CA certificate: %w", err)
	}
	keyBlock, _ := pem.Decode(caKeyPEM)
	if keyBlock == nil {
		return nil, nil, errors.New("failed to decode CA key PEM")
	}
	caKey, err := x509.ParsePKCS1PrivateKey(keyBlock.Bytes)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse CA key: %w", err)
	}

	serverKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate server key: %w", err)
	}
	serial, err := serialNumber()
	if err != nil {
		return nil, nil, err
	}

	var dnsNames []string
	var ips []net.IP
	for _, h := range m.opts.Hosts {
		if ip := net.ParseIP(h); ip != nil {
			ips = append(ips, ip)
		} else {
			dnsNames = append(dnsNames, h)
		}
	}
	commonName := "cranewatch"
	if len(m.opts.Hosts) > 0 {
		commonName = m.opts.Hosts[0]
	}

	now := m.now()
	template := &x509.Certificate{
		SerialNumber: serial,
		Subject: pkix.Name{
			Organization: []string{"cranewatch"},
			CommonName:   commonName,
		},
		NotBefore:             now.Add(-1 * time.Hour),
		NotAfter:              now.Add(ValidityDuration),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		DNSNames:              dnsNames,
		IPAddresses:           ips,
	}

	certDER, err := x509.CreateCertificate(rand.Reader, template, caCert, &serverKey.PublicKey, caKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create server certificate: %w", err)
	}

	certPEM = pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER})
	keyPEM = pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(serverKey)})
	return certPEM, keyPEM, nil
}

func serialNumber() (*big.Int, error) {
	n, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, fmt.Errorf("failed to generate serial number: %w", err)
	}
	return n, nil
}
