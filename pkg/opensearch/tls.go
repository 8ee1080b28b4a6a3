package opensearch

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"os"
)

// TLSConfig builds the certificate validation policy for cfg.
//
// With CACertPath set, only server chains rooted at that authority are
// accepted; the system roots are not consulted and host names are not
// checked. Without it every server certificate is accepted. That insecure
// default is intentional for self-signed development clusters and must stay
// opt-out rather than silently hardened.
func TLSConfig(cfg Config) (*tls.Config, error) {
	tlsCfg := &tls.Config{
		MinVersion: tls.VersionTLS12,
		// Chain validation is done in VerifyPeerCertificate when an authority is set.
		InsecureSkipVerify: true, //nolint:gosec
	}
	if cfg.CACertPath == "" {
		return tlsCfg, nil
	}

	pem, err := os.ReadFile(cfg.CACertPath)
	if err != nil {
		return nil, errors.Join(ErrInvalidCACert, err)
	}
	roots := x509.NewCertPool()
	if !roots.AppendCertsFromPEM(pem) {
		return nil, ErrInvalidCACert
	}
	tlsCfg.VerifyPeerCertificate = verifyAgainst(roots)
	return tlsCfg, nil
}

// verifyAgainst returns a callback accepting a presented chain only when its
// leaf verifies up to one of roots. Intermediates are taken from the chain itself.
func verifyAgainst(roots *x509.CertPool) func([][]byte, [][]*x509.Certificate) error {
	return func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
		if len(rawCerts) == 0 {
			return ErrUntrustedCertificate
		}
		certs := make([]*x509.Certificate, 0, len(rawCerts))
		for _, raw := range rawCerts {
			cert, err := x509.ParseCertificate(raw)
			if err != nil {
				return errors.Join(ErrUntrustedCertificate, err)
			}
			certs = append(certs, cert)
		}

		intermediates := x509.NewCertPool()
		for _, cert := range certs[1:] {
			intermediates.AddCert(cert)
		}
		if _, err := certs[0].Verify(x509.VerifyOptions{
			Roots:         roots,
			Intermediates: intermediates,
			KeyUsages:     []x509.ExtKeyUsage{x509.ExtKeyUsageAny},
		}); err != nil {
			return errors.Join(ErrUntrustedCertificate, err)
		}
		return nil
	}
}
