package validate

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/marketpulse/internal/model"
	"github.com/ppiankov/marketpulse/internal/repair"
)

func TestDefaultPolicy_Report(t *testing.T) {
	r := DefaultPolicy().Report()

	assert.Equal(t, 50, r.GoogleTrends)
	assert.Equal(t, "No data available.", r.KeyInsights)
	assert.Equal(t, "No data available.", r.Conclusion)
	assert.Equal(t, "No data available.", r.RisksAndOpportunities.Risks)
	assert.Equal(t, "No data available.", r.RisksAndOpportunities.Opportunities)
	assert.NotNil(t, r.KeyTakeaways)
	assert.Empty(t, r.KeyTakeaways)
	assert.NotNil(t, r.Recommendations)
	assert.Empty(t, r.Recommendations)
}

func TestDefaultPolicy_ReportPassesReportSchema(t *testing.T) {
	data, err := json.Marshal(DefaultPolicy().Report())
	require.NoError(t, err)

	out := Report(repair.Repair(string(data)), DefaultPolicy())
	assert.Equal(t, OutcomeOK, out.Kind, out.Reason)
}

func TestDefaultPolicy_Events(t *testing.T) {
	events := DefaultPolicy().Events()
	assert.NotNil(t, events)
	assert.Empty(t, events)

	data, err := json.Marshal(events)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestPolicyFromConfig(t *testing.T) {
	p := PolicyFromConfig(model.FallbackConfig{NeutralTrends: 120})
	assert.Equal(t, 100, p.NeutralTrends)
	assert.Equal(t, "No data available.", p.NoDataText)

	p = PolicyFromConfig(model.FallbackConfig{NeutralTrends: 40, NoDataText: "Nothing found."})
	assert.Equal(t, 40, p.NeutralTrends)
	assert.Equal(t, "Nothing found.", p.Report().Conclusion)
}
