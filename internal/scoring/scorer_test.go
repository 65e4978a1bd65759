package scoring

import (
	"math"
	"testing"
	"time"

	"github.com/exeosec/riskd/internal/interfaces"
	"github.com/exeosec/riskd/internal/model"
)

func newTestScorer(t *testing.T) interfaces.Scorer {
	t.Helper()
	s, err := NewRiskScorer(DefaultConfig(), interfaces.NewTestLogger(false))
	if err != nil {
		t.Fatalf("NewRiskScorer: %v", err)
	}
	return s
}

// businessHours is a Tuesday at 10:00 UTC.
var businessHours = time.Date(2025, 3, 11, 10, 0, 0, 0, time.UTC)

// baselineAlert is the minimal low-severity alert: no tags, no network
// fields, empty description, small payload, weekday business hours.
func baselineAlert() *model.AlertSnapshot {
	return &model.AlertSnapshot{
		Severity:   model.SeverityLow,
		AlertType:  "unknown",
		DetectedAt: businessHours,
		ClientID:   "tenant-a",
	}
}

func baselineSignals() model.ScoreSignals {
	return model.ScoreSignals{Now: businessHours}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func floatPtr(v float64) *float64 { return &v }

// ─── Bounds and determinism ────────────────────────────────────────────

func TestScore_BoundsHoldForVariedInputs(t *testing.T) {
	t.Parallel()
	s := newTestScorer(t)

	alerts := []*model.AlertSnapshot{
		baselineAlert(),
		{
			Severity:        model.SeverityCritical,
			AlertType:       "data_exfiltration",
			Tags:            []string{"ransomware", "apt", "anomaly", "escalation", "correlation"},
			SourceIP:        "1.1.1.1",
			DestinationIP:   "192.168.1.1",
			SourcePort:      445,
			DestinationPort: 3389,
			Protocol:        "tcp",
			Description:     "critical urgent immediate suspicious anomaly",
			RawPayloadSize:  1 << 20,
			DetectedAt:      time.Date(2025, 3, 15, 3, 0, 0, 0, time.UTC),
			ClientID:        "tenant-b",
			ClientName:      "Government Health Bank",
		},
		{
			Severity:    model.Severity("bogus"),
			AlertType:   "reconnaissance",
			Description: "false positive normal",
			DetectedAt:  businessHours,
			ClientID:    "tenant-c",
		},
	}
	sigs := []model.ScoreSignals{
		{Now: businessHours},
		{RecentSameSourceCount: 50, Tenant30dCount: 10000, MLScore: floatPtr(10.0), Now: businessHours},
		{RecentSameSourceCount: 6, Tenant30dCount: 101, MLScore: floatPtr(-3.0), Now: businessHours},
	}

	for _, a := range alerts {
		for _, sig := range sigs {
			b := s.Score(a, sig)
			if b.FinalScore < 0 || b.FinalScore > 10 {
				t.Errorf("final score %v out of [0,10]", b.FinalScore)
			}
			if b.Confidence < 0 || b.Confidence > 1 {
				t.Errorf("confidence %v out of [0,1]", b.Confidence)
			}
			for _, c := range b.Components {
				if c.Value < 0 || c.Value > 10 {
					t.Errorf("component %s value %v out of [0,10]", c.Name, c.Value)
				}
			}
		}
	}
}

func TestScore_BaselineDeterministic(t *testing.T) {
	t.Parallel()
	s := newTestScorer(t)

	// Pure low-severity path: 1.0*0.3 + 1.0*0.25 + 5.0*0.2 + 4.5*0.15 +
	// 5.0*0.1 + 5.0*0.1 = 3.225.
	first := s.Score(baselineAlert(), baselineSignals())
	if !almostEqual(first.FinalScore, 3.225) {
		t.Fatalf("baseline score = %v, want 3.225", first.FinalScore)
	}
	if first.RiskLevel != model.RiskLow {
		t.Errorf("baseline level = %s, want LOW", first.RiskLevel)
	}

	for i := 0; i < 10; i++ {
		b := s.Score(baselineAlert(), baselineSignals())
		if b.FinalScore != first.FinalScore || b.Confidence != first.Confidence {
			t.Fatalf("run %d not deterministic: score %v vs %v, confidence %v vs %v",
				i, b.FinalScore, first.FinalScore, b.Confidence, first.Confidence)
		}
	}
}

// ─── Severity component ────────────────────────────────────────────────

func TestScore_FalsePositiveKeywordLowersSeverity(t *testing.T) {
	t.Parallel()
	s := newTestScorer(t)

	plain := baselineAlert()
	plain.Description = "blocked outbound connection"
	flagged := baselineAlert()
	flagged.Description = "blocked outbound connection, likely false positive"

	bp := s.Score(plain, baselineSignals())
	bf := s.Score(flagged, baselineSignals())

	if bf.Components[0].Name != "severity" || bp.Components[0].Name != "severity" {
		t.Fatalf("expected severity as first component, got %q", bf.Components[0].Name)
	}
	if bf.Components[0].Value >= bp.Components[0].Value {
		t.Errorf("false-positive severity %v not below plain %v",
			bf.Components[0].Value, bp.Components[0].Value)
	}
}

func TestSeverityComponent_UnknownDefaultsToMedium(t *testing.T) {
	t.Parallel()
	a := baselineAlert()
	a.Severity = model.Severity("whatever")
	if got := severityComponent(a); !almostEqual(got, 3.0) {
		t.Errorf("unknown severity component = %v, want 3.0 (medium)", got)
	}
}

func TestSeverityComponent_KeywordsCompound(t *testing.T) {
	t.Parallel()
	a := baselineAlert()
	a.Severity = model.SeverityHigh
	a.Description = "CRITICAL and urgent activity"
	// 6.0 * 1.2 * 1.15 = 8.28
	if got := severityComponent(a); !almostEqual(got, 6.0*1.2*1.15) {
		t.Errorf("compound severity = %v, want %v", got, 6.0*1.2*1.15)
	}
}

// ─── Type component ────────────────────────────────────────────────────

func TestTypeComponent_TagsCompoundOntoBase(t *testing.T) {
	t.Parallel()
	a := baselineAlert()
	a.AlertType = "Malware"
	a.Tags = []string{"Ransomware", "apt", "unrelated"}
	// 1.5 * 1.8 * 1.5 = 4.05
	if got := typeComponent(a); !almostEqual(got, 1.5*1.8*1.5) {
		t.Errorf("type component = %v, want %v", got, 1.5*1.8*1.5)
	}
}

func TestTypeComponent_UnknownTypeIsNeutral(t *testing.T) {
	t.Parallel()
	a := baselineAlert()
	a.AlertType = "never-seen-before"
	if got := typeComponent(a); !almostEqual(got, 1.0) {
		t.Errorf("unknown type component = %v, want 1.0", got)
	}
}

// ─── Network component ─────────────────────────────────────────────────

func TestNetworkComponent_Increments(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		alert model.AlertSnapshot
		want  float64
	}{
		{"no network fields", model.AlertSnapshot{}, 5.0},
		{"private source", model.AlertSnapshot{SourceIP: "10.0.0.4"}, 5.0},
		{"external source", model.AlertSnapshot{SourceIP: "203.0.113.9"}, 6.0},
		{"malicious destination", model.AlertSnapshot{DestinationIP: "8.8.8.8"}, 7.0},
		{"critical asset destination", model.AlertSnapshot{DestinationIP: "192.168.1.10"}, 6.5},
		{"suspicious and high-risk port", model.AlertSnapshot{DestinationPort: 3389}, 6.5},
		{"both ports suspicious", model.AlertSnapshot{SourcePort: 445, DestinationPort: 6379}, 7.0},
		{"icmp", model.AlertSnapshot{Protocol: "ICMP"}, 5.5},
		{"unparseable source not external", model.AlertSnapshot{SourceIP: "not-an-ip"}, 5.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := networkComponent(&tc.alert); !almostEqual(got, tc.want) {
				t.Errorf("networkComponent = %v, want %v", got, tc.want)
			}
		})
	}
}

// ─── Temporal component ────────────────────────────────────────────────

func TestTemporalComponent_FrequencyMonotonic(t *testing.T) {
	t.Parallel()
	a := baselineAlert()

	quiet := temporalComponent(a, model.ScoreSignals{RecentSameSourceCount: 0, Now: businessHours})
	noisy := temporalComponent(a, model.ScoreSignals{RecentSameSourceCount: 11, Now: businessHours})
	if noisy < quiet {
		t.Errorf("temporal with count=11 (%v) below count=0 (%v)", noisy, quiet)
	}
	// Both thresholds stack above 10: +1.0 and +2.0.
	if !almostEqual(noisy-quiet, 3.0) {
		t.Errorf("stacked frequency bonus = %v, want 3.0", noisy-quiet)
	}
}

func TestTemporalComponent_TimeWindows(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		at   time.Time
		want float64
	}{
		{"night weekday", time.Date(2025, 3, 12, 3, 0, 0, 0, time.UTC), 6.0},
		{"business hours weekday", businessHours, 4.5},
		{"boundary hour 6 is not night", time.Date(2025, 3, 12, 6, 0, 0, 0, time.UTC), 5.0},
		{"boundary hour 17 is not business", time.Date(2025, 3, 12, 17, 0, 0, 0, time.UTC), 5.0},
		{"weekend evening", time.Date(2025, 3, 16, 20, 0, 0, 0, time.UTC), 5.5},
		{"weekend night", time.Date(2025, 3, 15, 3, 0, 0, 0, time.UTC), 6.5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := baselineAlert()
			a.DetectedAt = tc.at
			got := temporalComponent(a, model.ScoreSignals{Now: tc.at})
			if !almostEqual(got, tc.want) {
				t.Errorf("temporalComponent(%s) = %v, want %v", tc.at, got, tc.want)
			}
		})
	}
}

// ─── Tenant component ──────────────────────────────────────────────────

func TestTenantComponent_SectorAndVolume(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		tenant string
		count  int
		want   float64
	}{
		{"plain tenant", "Acme Corp", 0, 5.0},
		{"critical sector", "First National Bank", 0, 6.0},
		{"important sector", "Acme Retail Group", 0, 5.5},
		{"critical beats important", "Retail Bank Ltd", 0, 6.0},
		{"volume over 100", "Acme Corp", 101, 6.0},
		{"volume thresholds stack", "Acme Corp", 501, 8.0},
		{"sector plus stacked volume", "City Health Trust", 600, 9.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := baselineAlert()
			a.ClientName = tc.tenant
			got := tenantComponent(a, model.ScoreSignals{Tenant30dCount: tc.count, Now: businessHours})
			if !almostEqual(got, tc.want) {
				t.Errorf("tenantComponent = %v, want %v", got, tc.want)
			}
		})
	}
}

// ─── ML component and confidence ───────────────────────────────────────

func TestScore_MLScoreDoesNotReduceConfidence(t *testing.T) {
	t.Parallel()
	s := newTestScorer(t)

	withML := s.Score(baselineAlert(), model.ScoreSignals{MLScore: floatPtr(10.0), Now: businessHours})
	without := s.Score(baselineAlert(), model.ScoreSignals{Now: businessHours})

	if withML.Confidence < without.Confidence {
		t.Errorf("confidence with ml (%v) below without (%v)", withML.Confidence, without.Confidence)
	}
}

func TestScore_MLFallbackPenalizesConfidence(t *testing.T) {
	t.Parallel()
	s := newTestScorer(t)

	without := s.Score(baselineAlert(), baselineSignals())
	// Baseline components disagree (variance >= 2), so no agreement bonus:
	// 0.8 - 0.2 = 0.6.
	if !almostEqual(without.Confidence, 0.6) {
		t.Errorf("ml-fallback confidence = %v, want 0.6", without.Confidence)
	}

	outOfRange := s.Score(baselineAlert(), model.ScoreSignals{MLScore: floatPtr(42.0), Now: businessHours})
	if !almostEqual(outOfRange.Confidence, 0.6) {
		t.Errorf("out-of-range ml confidence = %v, want 0.6", outOfRange.Confidence)
	}
}

func TestScore_ComponentAgreementBoostsConfidence(t *testing.T) {
	t.Parallel()
	s := newTestScorer(t)

	// Medium severity (3.0), neutral type -> values 3,1,5,4.5,5,5 still
	// vary; build a genuinely agreeing set instead: high severity 6.0,
	// type boosted near 5, network/temporal/tenant near baseline.
	a := baselineAlert()
	a.Severity = model.SeverityHigh
	a.AlertType = "data_exfiltration"
	a.Tags = []string{"ransomware"}
	// values: 6.0, 2.0*1.8=3.6, 5.0, 4.5, 5.0, ml 5.5 -> variance < 2
	b := s.Score(a, model.ScoreSignals{MLScore: floatPtr(5.5), Now: businessHours})
	if !almostEqual(b.Confidence, 0.9) {
		t.Errorf("agreeing confidence = %v, want 0.9", b.Confidence)
	}
}

// ─── Risk level boundaries ─────────────────────────────────────────────

func TestLevelForScore_ExactBoundaries(t *testing.T) {
	t.Parallel()

	cases := []struct {
		score float64
		want  model.RiskLevel
	}{
		{10.0, model.RiskCritical},
		{8.0, model.RiskCritical},
		{7.999, model.RiskHigh},
		{6.0, model.RiskHigh},
		{5.999, model.RiskMedium},
		{4.0, model.RiskMedium},
		{3.999, model.RiskLow},
		{2.0, model.RiskLow},
		{1.999, model.RiskMinimal},
		{0.0, model.RiskMinimal},
	}

	for _, tc := range cases {
		if got := model.LevelForScore(tc.score); got != tc.want {
			t.Errorf("LevelForScore(%v) = %s, want %s", tc.score, got, tc.want)
		}
	}
}

// ─── End-to-end scenarios ──────────────────────────────────────────────

func TestScore_WorstCaseClampsToTen(t *testing.T) {
	t.Parallel()
	s := newTestScorer(t)

	a := &model.AlertSnapshot{
		Severity:        model.SeverityCritical,
		AlertType:       "ransomware", // not in the type table: tags carry the risk
		Tags:            []string{"ransomware", "apt", "anomaly", "escalation"},
		SourceIP:        "1.1.1.1", // external and on the malicious seed list
		DestinationIP:   "192.168.1.1",
		DestinationPort: 3389,
		Protocol:        "tcp",
		RawPayloadSize:  20000,
		DetectedAt:      time.Date(2025, 3, 15, 3, 0, 0, 0, time.UTC), // Saturday 03:00
		ClientID:        "tenant-bank",
		ClientName:      "First National Bank",
	}
	sig := model.ScoreSignals{
		RecentSameSourceCount: 12,
		Tenant30dCount:        600,
		MLScore:               floatPtr(9.0),
		Now:                   a.DetectedAt,
	}

	// Weighted sum: 3.0 + 0.675 + 2.0 + 1.425 + 0.9 + 0.9 = 8.9; plus
	// payload 0.5, anomaly 0.3, escalation 0.4 = 10.1 -> clamped.
	b := s.Score(a, sig)
	if !almostEqual(b.FinalScore, 10.0) {
		t.Errorf("worst-case score = %v, want clamp at 10.0", b.FinalScore)
	}
	if b.RiskLevel != model.RiskCritical {
		t.Errorf("worst-case level = %s, want CRITICAL", b.RiskLevel)
	}
	if b.Error != "" {
		t.Errorf("unexpected error on normal path: %q", b.Error)
	}
}

func TestScore_EmptyAlertStaysLowToMedium(t *testing.T) {
	t.Parallel()
	s := newTestScorer(t)

	empty := &model.AlertSnapshot{DetectedAt: businessHours}
	withoutML := s.Score(empty, model.ScoreSignals{Now: businessHours})
	withML := s.Score(empty, model.ScoreSignals{MLScore: floatPtr(5.0), Now: businessHours})

	if withoutML.FinalScore < 2.0 || withoutML.FinalScore > 6.0 {
		t.Errorf("empty-alert score = %v, want low-to-medium range", withoutML.FinalScore)
	}
	if !almostEqual(withML.Confidence-withoutML.Confidence, 0.2) {
		t.Errorf("ml-fallback penalty = %v, want 0.2", withML.Confidence-withoutML.Confidence)
	}
}

// ─── Fallback path ─────────────────────────────────────────────────────

func TestScore_NilAlertReturnsFallback(t *testing.T) {
	t.Parallel()
	s := newTestScorer(t)

	b := s.Score(nil, model.ScoreSignals{Now: businessHours})
	if !almostEqual(b.FinalScore, 5.0) {
		t.Errorf("fallback score = %v, want 5.0", b.FinalScore)
	}
	if b.Confidence != 0.0 {
		t.Errorf("fallback confidence = %v, want 0.0", b.Confidence)
	}
	if b.Error == "" {
		t.Error("fallback should surface the computation error")
	}
	if len(b.Components) == 0 || b.Components[0].Name != "error" {
		t.Errorf("fallback should carry an error component, got %+v", b.Components)
	}
	if b.Methodology != "error_fallback" {
		t.Errorf("fallback methodology = %q", b.Methodology)
	}
}

// ─── Breakdown shape ───────────────────────────────────────────────────

func TestScore_ComponentOrderAndWeights(t *testing.T) {
	t.Parallel()
	s := newTestScorer(t)

	b := s.Score(baselineAlert(), baselineSignals())

	wantOrder := []string{"severity", "alert_type", "network_context", "temporal", "tenant_context", "ml_enhancement"}
	if len(b.Components) != len(wantOrder) {
		t.Fatalf("component count = %d, want %d", len(b.Components), len(wantOrder))
	}
	sum := 0.0
	for i, c := range b.Components {
		if c.Name != wantOrder[i] {
			t.Errorf("component[%d] = %s, want %s", i, c.Name, wantOrder[i])
		}
		sum += c.Weight
	}
	if !almostEqual(sum, 1.0) {
		t.Errorf("core weights sum = %v, want 1.0", sum)
	}
}

func TestScore_LargePayloadAppendsComponent(t *testing.T) {
	t.Parallel()
	s := newTestScorer(t)

	a := baselineAlert()
	a.RawPayloadSize = 20000
	b := s.Score(a, baselineSignals())

	last := b.Components[len(b.Components)-1]
	if last.Name != "large_payload" || last.Weight != 0 {
		t.Errorf("expected trailing large_payload entry with weight 0, got %+v", last)
	}
	if !almostEqual(b.FinalScore, 3.225+0.5) {
		t.Errorf("payload-adjusted score = %v, want %v", b.FinalScore, 3.725)
	}
}
