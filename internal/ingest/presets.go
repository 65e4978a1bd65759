package ingest

// Vendor presets: per-system field maps for the integrations we see most.
// Unknown systems fall back to the default alias chains.

// Preset returns the FieldMap for a known system type, or nil.
func Preset(system string) *FieldMap {
	switch system {
	case "splunk":
		fm := DefaultFieldMap()
		fm.ID = []string{"event_id"}
		fm.Title = []string{"event_title"}
		fm.Description = []string{"message"}
		fm.Severity = []string{"priority"}
		fm.SourceIP = []string{"src_ip"}
		fm.DestinationIP = []string{"dst_ip"}
		fm.Timestamp = []string{"timestamp"}
		fm.SeverityValues = map[string]string{
			"1": "critical", "2": "high", "3": "medium", "4": "low",
		}
		return &fm
	case "qradar":
		fm := DefaultFieldMap()
		fm.ID = []string{"event_id"}
		fm.Title = []string{"event_name"}
		fm.Description = []string{"description"}
		fm.Severity = []string{"severity"}
		fm.SourceIP = []string{"sourceip"}
		fm.DestinationIP = []string{"destinationip"}
		fm.Timestamp = []string{"starttime"}
		fm.SeverityValues = map[string]string{
			"1": "critical", "2": "high", "3": "medium", "4": "low",
		}
		return &fm
	case "fortinet":
		fm := DefaultFieldMap()
		fm.ID = []string{"logid"}
		fm.Title = []string{"action"}
		fm.Description = []string{"msg"}
		fm.Severity = []string{"level"}
		fm.SourceIP = []string{"srcip"}
		fm.DestinationIP = []string{"dstip"}
		fm.Timestamp = []string{"time"}
		fm.SeverityValues = map[string]string{
			"emergency": "critical", "alert": "high", "critical": "high",
			"error": "medium", "warning": "medium", "notice": "low", "info": "low",
		}
		return &fm
	case "paloalto":
		fm := DefaultFieldMap()
		fm.ID = []string{"serial_number"}
		fm.Title = []string{"action"}
		fm.Description = []string{"description"}
		fm.Severity = []string{"severity"}
		fm.SourceIP = []string{"src"}
		fm.DestinationIP = []string{"dst"}
		fm.Timestamp = []string{"receive_time"}
		fm.SeverityValues = map[string]string{
			"critical": "critical", "high": "high", "medium": "medium",
			"low": "low", "informational": "low",
		}
		return &fm
	default:
		return nil
	}
}
