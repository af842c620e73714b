package config_test

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lokasoft/racktables-to-netbox/internal/config"
)

func TestConfig(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Config Suite")
}

var _ = Describe("Load", func() {
	It("should apply struct defaults with no file at all", func() {
		settings, err := config.Load("")

		Expect(err).NotTo(HaveOccurred())
		Expect(settings.NetBox.Host).To(Equal("localhost"))
		Expect(settings.NetBox.Port).To(Equal(8000))
		Expect(settings.MySQL.Database).To(Equal("racktables"))
		Expect(settings.PrefixDefaultStatus).To(Equal("container"))
		Expect(settings.PrefetchWorkers).To(Equal(3))
		Expect(settings.Stages.RackedDevices).To(BeTrue())
		Expect(settings.Stages.IPRanges).To(BeTrue())
	})

	It("should let a YAML file override the defaults", func() {
		path := filepath.Join(GinkgoT().TempDir(), "config.yaml")
		payload := []byte(`netbox:
  host: netbox.example.com
  port: 443
  use_ssl: true
mysql:
  password: hunter2
stages:
  nat_mappings: false
log_level: debug
`)
		Expect(os.WriteFile(path, payload, 0o644)).To(Succeed())

		settings, err := config.Load(path)

		Expect(err).NotTo(HaveOccurred())
		Expect(settings.NetBox.BaseURL()).To(Equal("https://netbox.example.com:443"))
		Expect(settings.MySQL.Password).To(Equal("hunter2"))
		Expect(settings.Stages.NATMappings).To(BeFalse())
		Expect(settings.Stages.VLANs).To(BeTrue())
		Expect(settings.LogLevel).To(Equal("debug"))
	})

	It("should fail on an unreadable file", func() {
		_, err := config.Load(filepath.Join(GinkgoT().TempDir(), "missing.yaml"))
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("MySQL DSN", func() {
	It("should build a driver connection string", func() {
		m := config.MySQL{Host: "db", Port: 3306, User: "rt", Password: "pw", Database: "racktables"}
		Expect(m.DSN()).To(Equal("rt:pw@tcp(db:3306)/racktables?charset=utf8mb4&parseTime=true"))
	})
})
