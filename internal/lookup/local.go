package lookup

import (
	"fmt"
	"log"
	"net"
	"os"

	"github.com/oschwald/maxminddb-golang"
)

// LocalDB answers ASN questions from a GeoLite2-ASN MMDB file.
type LocalDB struct {
	reader *maxminddb.Reader
}

// mmdbRecord maps the fields in a GeoLite2-ASN MMDB.
type mmdbRecord struct {
	AutonomousSystemNumber       int    `maxminddb:"autonomous_system_number"`
	AutonomousSystemOrganization string `maxminddb:"autonomous_system_organization"`
}

// NewLocalDB tries to open the MMDB file. Returns nil if not available.
func NewLocalDB(path string) *LocalDB {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Printf("[local] MMDB file not found at %s, local ASN lookup disabled", path)
		return nil
	}

	reader, err := maxminddb.Open(path)
	if err != nil {
		log.Printf("[local] Failed to open MMDB: %v, local ASN lookup disabled", err)
		return nil
	}

	log.Printf("[local] Loaded MMDB: %s", path)
	return &LocalDB{reader: reader}
}

// Lookup returns the ASN and its organisation for ipStr.
func (db *LocalDB) Lookup(ipStr string) (int, string, error) {
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return 0, "", fmt.Errorf("invalid IP: %s", ipStr)
	}

	var record mmdbRecord
	if err := db.reader.Lookup(ip, &record); err != nil {
		return 0, "", fmt.Errorf("MMDB lookup failed: %w", err)
	}
	return record.AutonomousSystemNumber, record.AutonomousSystemOrganization, nil
}

// Close closes the MMDB reader.
func (db *LocalDB) Close() {
	if db != nil && db.reader != nil {
		db.reader.Close()
	}
}
