package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
)

// Domain contains core models shared by the programs.

// CertifiedTable is a certified table definition as assembled from local
// statement templates before it is sent to FDP.
type CertifiedTable struct {
	Name                 string
	Description          string
	QueryType            string
	QueryStatement       string
	CreateTableStatement string
}

// Key identifies the table within the owning service.
func (t CertifiedTable) Key(service string) string {
	return service + "/" + t.Name
}

// Fingerprint hashes everything the table definition would be created with
// for service: name, description, owners (order-insensitive), query type and
// both statements.
func (t CertifiedTable) Fingerprint(service string, owners []string) string {
	sorted := append([]string(nil), owners...)
	sort.Strings(sorted)

	parts := []string{service, t.Name, t.Description, t.QueryType, t.QueryStatement, t.CreateTableStatement}
	parts = append(parts, sorted...)

	h := sha256.New()
	for _, part := range parts {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
