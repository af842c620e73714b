package config

import (
	"fmt"
	"strings"

	"github.com/creasty/defaults"
	"github.com/spf13/viper"
)

// NetBox holds the target API connection settings.
type NetBox struct {
	Host   string `mapstructure:"host" default:"localhost"`
	Port   int    `mapstructure:"port" default:"8000"`
	Token  string `mapstructure:"token"`
	UseSSL bool   `mapstructure:"use_ssl" default:"false"`
}

// BaseURL returns the API root, scheme chosen by UseSSL.
func (n NetBox) BaseURL() string {
	scheme := "http"
	if n.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, n.Host, n.Port)
}

// MySQL holds the Racktables source database connection settings.
type MySQL struct {
	Host     string `mapstructure:"host" default:"localhost"`
	Port     int    `mapstructure:"port" default:"3306"`
	User     string `mapstructure:"user" default:"root"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database" default:"racktables"`
}

// DSN returns a go-sql-driver/mysql connection string.
func (m MySQL) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=true",
		m.User, m.Password, m.Host, m.Port, m.Database)
}

// Stages toggles individual migration stages. All default on; the
// basic-only/extended-only CLI flags flip whole groups at once.
type Stages struct {
	VLANGroups           bool `mapstructure:"vlan_groups" default:"true"`
	VLANs                bool `mapstructure:"vlans" default:"true"`
	MountedVMs           bool `mapstructure:"mounted_vms" default:"true"`
	UnmountedVMs         bool `mapstructure:"unmounted_vms" default:"true"`
	RackedDevices        bool `mapstructure:"racked_devices" default:"true"`
	NonRackedDevices     bool `mapstructure:"non_racked_devices" default:"true"`
	Interfaces           bool `mapstructure:"interfaces" default:"true"`
	InterfaceConnections bool `mapstructure:"interface_connections" default:"true"`
	IPv4                 bool `mapstructure:"ipv4" default:"true"`
	IPv6                 bool `mapstructure:"ipv6" default:"true"`
	IPNetworks           bool `mapstructure:"ip_networks" default:"true"`
	IPAllocated          bool `mapstructure:"ip_allocated" default:"true"`
	IPUnallocated        bool `mapstructure:"ip_unallocated" default:"true"`

	PatchCables      bool `mapstructure:"patch_cables" default:"true"`
	Files            bool `mapstructure:"files" default:"true"`
	VirtualServices  bool `mapstructure:"virtual_services" default:"true"`
	NATMappings      bool `mapstructure:"nat_mappings" default:"true"`
	LoadBalancing    bool `mapstructure:"load_balancing" default:"true"`
	MonitoringData   bool `mapstructure:"monitoring_data" default:"true"`
	AvailableSubnets bool `mapstructure:"available_subnets" default:"true"`
	IPRanges         bool `mapstructure:"ip_ranges" default:"true"`
}

// Settings is the full runtime configuration.
type Settings struct {
	NetBox NetBox `mapstructure:"netbox"`
	MySQL  MySQL  `mapstructure:"mysql"`
	Stages Stages `mapstructure:"stages"`

	// TargetSite restricts the run to one site; empty means everything.
	TargetSite   string `mapstructure:"target_site"`
	TargetTenant string `mapstructure:"target_tenant"`

	// StoreData enables the cross-reference cache snapshot between runs.
	StoreData   bool   `mapstructure:"store_data" default:"false"`
	SnapshotDir string `mapstructure:"snapshot_dir" default:"."`

	ErrorLogPath string `mapstructure:"error_log_path" default:"errors.log"`

	// PrefixDefaultStatus is applied to prefixes whose name and comment
	// carry no recognized status keyword at all.
	PrefixDefaultStatus string `mapstructure:"prefix_default_status" default:"container"`

	// SiteNameLengthThreshold: Location names longer than this are treated
	// as street addresses rather than sites.
	SiteNameLengthThreshold int `mapstructure:"site_name_length_threshold" default:"10"`

	// PrefetchWorkers sizes the read-only prefetch pool.
	PrefetchWorkers int `mapstructure:"prefetch_workers" default:"3"`

	LogLevel string `mapstructure:"log_level" default:"info"`
}

// Load reads settings from the given YAML file (optional), the RT2NB_*
// environment and struct defaults, lowest priority last.
func Load(path string) (*Settings, error) {
	v := viper.New()
	v.SetEnvPrefix("RT2NB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	settings := &Settings{}
	if err := defaults.Set(settings); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}
	if err := v.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	return settings, nil
}
