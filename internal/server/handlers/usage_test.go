package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/aveekpatra/Domain-AI/internal/ratelimit"
)

func TestAIUsageListsUsedOperations(t *testing.T) {
	ctrl := gomock.NewController(t)
	usage := NewMockUsageReporter(ctrl)

	usage.EXPECT().Usage(gomock.Any(), "198.51.100.4", ratelimit.OpDomainsGenerate).Return(&ratelimit.Usage{
		Minute:    ratelimit.WindowUsage{Current: 2, Max: 3},
		TotalCost: 20,
	}, nil)
	usage.EXPECT().Usage(gomock.Any(), "198.51.100.4", ratelimit.OpPromptImprove).Return(nil, nil)
	usage.EXPECT().Usage(gomock.Any(), "198.51.100.4", ratelimit.OpDomainsValidate).Return(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/ai/usage", nil)
	req.Header.Set("CF-Connecting-IP", "198.51.100.4")
	rec := httptest.NewRecorder()
	(&API{Usage: usage}).AIUsage(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp UsageResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "198.51.100.4", resp.IP)
	require.Len(t, resp.Operations, 1)
	assert.Equal(t, 2, resp.Operations[ratelimit.OpDomainsGenerate].Minute.Current)
	assert.Equal(t, 20, resp.Operations[ratelimit.OpDomainsGenerate].TotalCost)
}

func TestAIUsageDisabled(t *testing.T) {
	rec := httptest.NewRecorder()
	(&API{}).AIUsage(rec, httptest.NewRequest(http.MethodGet, "/api/ai/usage", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
