package schema

// NewCatalog builds the registry of network data schemas, carried forward
// from the original schema_registry.py's _initialize_network_schemas: FTTH
// OLT, LAG, Mobile Modem, Team, and PXC cross-connect. The OLT schema's
// environment enum follows SPEC_FULL.md's authoritative {PRODUCTION, UAT,
// TEST} rather than the original source's {PRODUCTION, TEST, STAGING} — see
// DESIGN.md's Open Question resolution.
func NewCatalog() *Registry {
	r := NewRegistry()

	r.Register(Schema{
		Name:    "ftth_olt",
		Version: "1.0",
		Fields: []Field{
			{Name: "name", Type: FieldPattern, Pattern: `^OLT\d+[A-Z]{3,4}\d+$`, Required: true, Description: "unique OLT identifier"},
			{Name: "region", Type: FieldEnum, Enum: []string{"HOBO", "GENT", "ROES", "ASSE"}, Required: true, Description: "geographic region"},
			{Name: "environment", Type: FieldEnum, Enum: []string{"PRODUCTION", "UAT", "TEST"}, Required: true, Description: "deployment environment"},
			{Name: "esi_name", Type: FieldString, Description: "ethernet segment identifier name"},
			{Name: "bandwidth_gbps", Type: FieldInteger, Description: "bandwidth capacity in Gbps"},
			{Name: "service_count", Type: FieldInteger, Description: "number of active services"},
			{Name: "managed_by_inmanta", Type: FieldBool, Description: "whether managed by Inmanta"},
			{Name: "complete_config", Type: FieldBool, Description: "whether configuration is complete"},
		},
		IntentKeywords: []string{"ftth", "olt", "fiber", "optical"},
		Relationships: map[string][]string{
			"connects_to": {"cin_node", "bng_node"},
			"serves":      {"subscribers", "services"},
			"managed_by":  {"teams"},
		},
		BusinessContext: map[string]string{
			"criticality":             "high",
			"service_impact":          "customer_facing",
			"availability_requirement": "99.9%",
		},
		Constraints: []string{
			"production_olts_require_redundancy",
			"bandwidth_must_match_subscribers",
			"region_must_match_physical_location",
		},
		Invariants: []Invariant{
			{
				Description: "complete_config implies managed_by_inmanta and service_count > 0",
				Holds: func(rec map[string]any) bool {
					complete, _ := rec["complete_config"].(bool)
					if !complete {
						return true
					}
					managed, _ := rec["managed_by_inmanta"].(bool)
					count, ok := asInt(rec["service_count"])
					return managed && ok && count > 0
				},
			},
		},
	})

	r.Register(Schema{
		Name:    "lag",
		Version: "1.0",
		Fields: []Field{
			{Name: "device_name", Type: FieldString, Required: true, Description: "device hosting the LAG"},
			{Name: "lag_id", Type: FieldInteger, Required: true, Description: "LAG identifier"},
			{Name: "description", Type: FieldString, Description: "human-readable LAG description"},
			{Name: "admin_key", Type: FieldInteger, Description: "LACP administrative key"},
			{Name: "status", Type: FieldEnum, Enum: []string{"active", "inactive", "degraded"}, Description: "current LAG status"},
		},
		IntentKeywords: []string{"lag", "link", "aggregation", "lacp"},
		Relationships: map[string][]string{
			"aggregates": {"physical_ports"},
			"connects":   {"ftth_olt", "bng_node"},
			"managed_by": {"teams"},
		},
		BusinessContext: map[string]string{
			"criticality":    "high",
			"service_impact": "multiple_services",
			"redundancy":     "required",
		},
		Constraints: []string{
			"lag_members_same_device",
			"admin_key_must_be_unique",
			"minimum_two_members_for_redundancy",
		},
	})

	r.Register(Schema{
		Name:    "mobile_modem",
		Version: "1.0",
		Fields: []Field{
			{Name: "serial_number", Type: FieldPattern, Pattern: `^LPL\d+[A-Z0-9]+$`, Required: true, Description: "device serial number"},
			{Name: "hardware_type", Type: FieldString, Required: true, Description: "hardware model/type"},
			{Name: "mobile_subscriber_id", Type: FieldPattern, Pattern: `^MOBILE-SUB-VPN-`, Description: "VPN subscriber identifier"},
			{Name: "mobile_modem_id", Type: FieldString, Description: "unique modem identifier"},
			{Name: "fnt_command_id", Type: FieldString, Description: "FNT command identifier if configured"},
		},
		IntentKeywords: []string{"mobile", "modem", "nokia", "5g"},
		Relationships: map[string][]string{
			"connects_to":   {"mobile_network"},
			"has_subscriber": {"vpn_subscriber"},
			"managed_by":    {"mobile_team"},
		},
		BusinessContext: map[string]string{
			"criticality":  "medium",
			"service_type": "mobile_connectivity",
		},
	})

	r.Register(Schema{
		Name:    "team",
		Version: "1.0",
		Fields: []Field{
			{Name: "team_name", Type: FieldEnum, Enum: []string{"MOBILE", "NAS", "IPOPS", "INFRA", "DTV"}, Required: true, Description: "team identifier"},
			{Name: "team_id", Type: FieldString, Required: true, Description: "unique team identifier"},
			{Name: "description", Type: FieldString, Description: "team responsibilities description"},
		},
		IntentKeywords: []string{"team", "responsible", "contact", "escalation"},
		Relationships: map[string][]string{
			"manages":      {"network_devices", "services"},
			"escalates_to": {"management"},
		},
		BusinessContext: map[string]string{
			"availability":     "24x7_support",
			"responsibilities": "network_operations",
		},
	})

	r.Register(Schema{
		Name:    "pxc",
		Version: "1.0",
		Fields: []Field{
			{Name: "device_name", Type: FieldString, Required: true, Description: "device hosting PXC"},
			{Name: "pxc_id", Type: FieldString, Required: true, Description: "cross-connect port identifier"},
			{Name: "description", Type: FieldString, Description: "cross-connect purpose/description"},
			{Name: "status", Type: FieldEnum, Enum: []string{"active", "inactive", "maintenance"}, Description: "current status"},
		},
		IntentKeywords: []string{"pxc", "cross", "connect", "integration"},
		Relationships: map[string][]string{
			"connects": {"network_segments"},
			"enables":  {"service_provisioning"},
		},
		BusinessContext: map[string]string{
			"criticality": "medium",
			"purpose":     "network_integration",
		},
	})

	return r
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
