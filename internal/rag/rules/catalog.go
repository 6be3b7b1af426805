package rules

// NewCatalog builds the declarative rule set carried forward from the
// original health_rules.py: FTTH OLT (the spec's reference scoring numbers)
// and Mobile Modem. The environment-specific threshold overlays
// (PRODUCTION/UAT/TEST) are kept separately in EnvironmentOverrides and are
// not part of the returned rules.
func NewCatalog() []Rule {
	return []Rule{ftthOLTRule(), mobileModemRule()}
}

func ftthOLTRule() Rule {
	return Rule{
		ID:         "health_rule_ftth_olt_001",
		DeviceKind: "ftth_olt",
		Version:    "1.0",
		SummaryFields: []string{
			"name", "region", "environment", "bandwidth_gbps",
			"service_count", "managed_by_inmanta", "complete_config",
			"esi_name", "connection_type",
		},
		Keywords: []string{"health", "assessment", "ftth", "olt", "scoring", "inmanta", "configuration", "services", "bandwidth"},
		Conditions: []Condition{
			{Severity: SeverityCritical, Predicate: Eq("service_count", 0), Label: "service_count == 0"},
			{Severity: SeverityCritical, Predicate: Eq("complete_config", false), Label: "complete_config == false"},
			{
				Severity:  SeverityCritical,
				Predicate: And(Eq("environment", "PRODUCTION"), Not(Eq("managed_by_inmanta", true))),
				Label:     "environment == PRODUCTION and not managed_by_inmanta",
			},
			{Severity: SeverityWarning, Predicate: Lt("service_count", 50), Label: "service_count < 50"},
			{Severity: SeverityWarning, Predicate: Eq("managed_by_inmanta", false), Label: "managed_by_inmanta == false"},
			{
				Severity: SeverityHealthy,
				Predicate: And(
					Not(Lt("service_count", 50)),
					Eq("managed_by_inmanta", true),
					Eq("complete_config", true),
				),
				Label: "service_count >= 50 and managed_by_inmanta and complete_config",
			},
		},
		Adjustments: []Adjustment{
			{Predicate: Eq("service_count", 0), Impact: -50, Reason: "No services"},
			{Predicate: Not(Eq("managed_by_inmanta", true)), Impact: -30, Reason: "Manual management"},
			{Predicate: Not(Eq("complete_config", true)), Impact: -40, Reason: "Incomplete config"},
			{Predicate: And(Gt("service_count", 0), Lt("service_count", 50)), Impact: -20, Reason: "Low utilization"},
			{Predicate: Not(Lt("bandwidth_gbps", 100)), Impact: 10, Reason: "High capacity"},
		},
		Recommendations: []Recommendation{
			{Predicate: Eq("service_count", 0), Message: "URGENT: Configure services for this OLT immediately", Priority: PriorityHigh},
			{Predicate: Not(Eq("complete_config", true)), Message: "Complete device configuration to ensure stability", Priority: PriorityHigh},
			{Predicate: Not(Eq("managed_by_inmanta", true)), Message: "Migrate to Inmanta for automated management", Priority: PriorityMedium},
			{Predicate: Lt("bandwidth_gbps", 10), Message: "Consider bandwidth upgrade for better performance", Priority: PriorityLow},
		},
	}
}

func mobileModemRule() Rule {
	return Rule{
		ID:         "health_rule_mobile_modem_001",
		DeviceKind: "mobile_modem",
		Version:    "1.0",
		SummaryFields: []string{
			"name", "model", "status", "signal_strength",
			"throughput_mbps", "temperature_celsius", "network_type",
		},
		Keywords: []string{"health", "mobile", "modem", "4g", "5g", "signal", "temperature"},
		Conditions: []Condition{
			{Severity: SeverityCritical, Predicate: Lt("signal_strength", -110), Label: "signal_strength < -110"},
			{Severity: SeverityCritical, Predicate: In("status", "DISCONNECTED", "ERROR"), Label: "status in (DISCONNECTED, ERROR)"},
			{Severity: SeverityCritical, Predicate: Gt("temperature_celsius", 70), Label: "temperature_celsius > 70"},
			{Severity: SeverityWarning, Predicate: Lt("signal_strength", -90), Label: "signal_strength < -90"},
			{Severity: SeverityWarning, Predicate: Lt("throughput_mbps", 10), Label: "throughput_mbps < 10"},
			{Severity: SeverityWarning, Predicate: Gt("temperature_celsius", 60), Label: "temperature_celsius > 60"},
		},
		Adjustments: []Adjustment{
			{Predicate: Lt("signal_strength", -110), Impact: -50, Reason: "Very poor signal"},
			{Predicate: In("status", "DISCONNECTED", "ERROR"), Impact: -40, Reason: "Connection down"},
			{Predicate: Gt("temperature_celsius", 70), Impact: -30, Reason: "Overheating"},
			{Predicate: Lt("signal_strength", -90), Impact: -15, Reason: "Weak signal"},
			{Predicate: Lt("throughput_mbps", 10), Impact: -10, Reason: "Low throughput"},
			{Predicate: Gt("temperature_celsius", 60), Impact: -10, Reason: "High temperature"},
		},
		Recommendations: []Recommendation{
			{Predicate: In("status", "DISCONNECTED", "ERROR"), Message: "Investigate connectivity loss immediately", Priority: PriorityHigh},
			{Predicate: Gt("temperature_celsius", 70), Message: "Inspect device cooling, risk of thermal shutdown", Priority: PriorityHigh},
			{Predicate: Lt("signal_strength", -90), Message: "Check antenna alignment or relocate device", Priority: PriorityMedium},
			{Predicate: Lt("throughput_mbps", 10), Message: "Investigate radio congestion or backhaul saturation", Priority: PriorityLow},
		},
	}
}

// EnvironmentOverride is the environment-specific threshold overlay from the
// original's environment_specific_rules. Engine.Evaluate does not read it;
// the PRODUCTION-only CRITICAL condition is written directly into
// ftthOLTRule's Conditions.
type EnvironmentOverride struct {
	MinServiceCount        int
	RequireInmanta         bool
	RequireCompleteConfig  bool
}

// EnvironmentOverrides is keyed by the schema's authoritative
// {PRODUCTION, UAT, TEST} enum (see DESIGN.md's Open Question resolution).
var EnvironmentOverrides = map[string]EnvironmentOverride{
	"PRODUCTION": {MinServiceCount: 100, RequireInmanta: true, RequireCompleteConfig: true},
	"UAT":        {MinServiceCount: 10, RequireInmanta: false, RequireCompleteConfig: false},
	"TEST":       {MinServiceCount: 1, RequireInmanta: false, RequireCompleteConfig: false},
}
