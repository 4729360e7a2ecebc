// End-to-end flow against a fake hub: authenticate, clone the
// topology, run the integrity and recency analyses.
package e2e

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlindner/waterhub/pkg/analyzer"
	"github.com/mlindner/waterhub/pkg/hub"
)

// newHubServer serves a minimal healthy topology the way the real API
// shapes its listings: one location, one abstraction application, one
// module with a fully specified flow instrumentation.
func newHubServer(t *testing.T, latest time.Time) *httptest.Server {
	t.Helper()

	checkAuth := func(r *http.Request) {
		if r.Header.Get("Api-Key") == "" {
			t.Error("Request is missing the Api-Key header")
		}
		if r.Header.Get("Authorization") == "" {
			t.Error("Request is missing the Authorization header")
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/nodes", func(w http.ResponseWriter, r *http.Request) {
		checkAuth(r)
		fmt.Fprint(w, `{
			"nodes": [
				{"id": 1, "name": "Plant North", "type": {"code": "location"}},
				{"id": 2, "name": "Abstraction", "type": {"code": "water_abstraction"}, "parent": {"id": 1}},
				{"id": 3, "name": "Well Field", "type": {"code": "module"}, "parent": {"id": 2},
				 "instrumentations": {"items": [{"id": 10}]}}
			],
			"pagination": {}
		}`)
	})
	mux.HandleFunc("/instrumentations", func(w http.ResponseWriter, r *http.Request) {
		checkAuth(r)
		fmt.Fprint(w, `{
			"instrumentations": [
				{"id": 10, "tag": "FIT-001", "type": {"code": "flow"},
				 "assets": {"items": [{"id": 100, "serial_number": "SN-100",
				   "product": {"name": "Promag", "product_code": "5W4C"}}]},
				 "specifications": {"eh_nni_primary_key": {"value": "volumeflow"}},
				 "values": [{"key": "volumeflow"}, {"key": "totalizer1"}],
				 "thresholds": {"items": [
				   {"key": "volumeflow", "name": "hi", "threshold_type": "upper", "value": 120}
				 ]}}
			],
			"pagination": {}
		}`)
	})
	mux.HandleFunc("/instrumentations/10/values", func(w http.ResponseWriter, r *http.Request) {
		checkAuth(r)
		fmt.Fprintf(w, `{"values": [{"key": "volumeflow", "timestamp": %q, "value": 12.5}]}`,
			latest.Format(time.RFC3339))
	})

	return httptest.NewServer(mux)
}

func TestEndToEndAnalysisFlow(t *testing.T) {
	latest := time.Now().UTC().Add(-2 * time.Hour)
	srv := newHubServer(t, latest)
	defer srv.Close()

	cred := hub.Credential{
		User:     "operator@example.com",
		Password: "pw",
		APIKey:   "key123",
		Region:   hub.RegionStaging,
	}
	client, err := hub.NewClient(cred, hub.WithBaseURLs(srv.URL+"/", srv.URL+"/oauth/token"))
	require.NoError(t, err, "Client construction should succeed")

	ctx := context.Background()
	a, err := analyzer.New(ctx, client)
	require.NoError(t, err, "Hierarchy clone should succeed")

	h := a.Hierarchy()
	assert.Equal(t, 3, h.NodeCount(), "All fetched nodes should be registered")
	assert.Equal(t, 1, h.InstrumentationCount(), "The flow instrumentation should be registered")
	assert.Equal(t, 1, h.AssetCount(), "The embedded asset summary should be promoted")

	asset := h.AssetBySerial("SN-100")
	require.NotNil(t, asset, "Should find the asset by serial number")
	assert.Equal(t, "5W4C", asset.ProductCode, "Product identity should survive the clone")

	rep := a.CheckIntegrity()
	assert.Equal(t, 0, rep.AlertCount(), "A healthy topology should pass every integrity rule")

	groups, err := a.GroupByLatestValues(ctx)
	require.NoError(t, err, "Recency grouping should succeed")
	require.Len(t, groups.Fresh, 1, "The 2h-old measurement should be fresh")
	assert.Equal(t, 10, groups.Fresh[0].Instrumentation.ID)
	assert.Empty(t, groups.Aging, "Nothing should be aging")
	assert.Empty(t, groups.Stale, "Nothing should be stale")
}
