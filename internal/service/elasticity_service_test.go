package service

import (
	"encoding/json"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/pedsim/internal/dataset"
	"github.com/alanyoungcy/pedsim/internal/domain"
	"github.com/alanyoungcy/pedsim/internal/report"
)

var linearDemand = []domain.Observation{
	{Price: 10, Qty: 1000},
	{Price: 20, Qty: 800},
	{Price: 30, Qty: 600},
	{Price: 40, Qty: 400},
}

func elasticDemand() []domain.Observation {
	var obs []domain.Observation
	for _, p := range []float64{5, 10, 15, 20, 25, 30} {
		obs = append(obs, domain.Observation{Price: p, Qty: math.Exp(10 - 2*math.Log(p))})
	}
	return obs
}

func costPtr(v float64) *float64 { return &v }

func newTestService() *ElasticityService {
	return NewElasticityService(testEngineConfig(), nil, nil, nil, nil, testLogger())
}

func TestLoadDataset(t *testing.T) {
	uploads := newFakeDatasetCache()
	require.NoError(t, uploads.Put(t.Context(), domain.Dataset{ID: "u1", Observations: linearDemand}))
	erp := &fakeObservationStore{bySKU: map[string][]domain.Observation{"SKU-1": linearDemand[:2]}}
	blobs := &fakeBlobReader{objects: map[string][]byte{"datasets/a.csv": []byte("price,qty\n1,2\n3,4\n5,6\n")}}

	svc := NewElasticityService(testEngineConfig(), nil, uploads, erp, blobs, testLogger())
	ctx := t.Context()

	demo, err := svc.LoadDataset(ctx, domain.DatasetRef{})
	require.NoError(t, err)
	assert.Len(t, demo, 20)

	inline, err := svc.LoadDataset(ctx, domain.DatasetRef{Source: domain.SourceInline, Observations: linearDemand})
	require.NoError(t, err)
	assert.Equal(t, linearDemand, inline)

	up, err := svc.LoadDataset(ctx, domain.DatasetRef{Source: domain.SourceUpload, ID: "u1"})
	require.NoError(t, err)
	assert.Len(t, up, 4)

	fromS3, err := svc.LoadDataset(ctx, domain.DatasetRef{Source: domain.SourceS3, Key: "datasets/a.csv"})
	require.NoError(t, err)
	assert.Len(t, fromS3, 3)

	fromERP, err := svc.LoadDataset(ctx, domain.DatasetRef{Source: domain.SourceERP, SKU: "SKU-1"})
	require.NoError(t, err)
	assert.Len(t, fromERP, 2)

	_, err = svc.LoadDataset(ctx, domain.DatasetRef{Source: domain.SourceUpload, ID: "missing"})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLoadDataset_Errors(t *testing.T) {
	svc := newTestService()
	ctx := t.Context()

	tests := []struct {
		name string
		ref  domain.DatasetRef
		want error
	}{
		{"empty inline", domain.DatasetRef{Source: domain.SourceInline}, domain.ErrInvalidInput},
		{"unknown source", domain.DatasetRef{Source: "ftp"}, domain.ErrInvalidInput},
		{"uploads not wired", domain.DatasetRef{Source: domain.SourceUpload, ID: "x"}, domain.ErrSourceUnavailable},
		{"s3 not wired", domain.DatasetRef{Source: domain.SourceS3, Key: "k"}, domain.ErrSourceUnavailable},
		{"erp not wired", domain.DatasetRef{Source: domain.SourceERP, SKU: "s"}, domain.ErrSourceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.LoadDataset(ctx, tt.ref)
			require.ErrorIs(t, err, tt.want)
		})
	}

	wired := NewElasticityService(testEngineConfig(), nil, newFakeDatasetCache(),
		&fakeObservationStore{}, &fakeBlobReader{}, testLogger())
	for _, ref := range []domain.DatasetRef{
		{Source: domain.SourceUpload},
		{Source: domain.SourceS3},
		{Source: domain.SourceERP},
	} {
		_, err := wired.LoadDataset(ctx, ref)
		require.ErrorIs(t, err, domain.ErrInvalidInput, "source %s", ref.Source)
	}
}

func TestSources(t *testing.T) {
	got := NewElasticityService(testEngineConfig(), nil, newFakeDatasetCache(), nil, nil, testLogger()).Sources()
	assert.True(t, got[domain.SourceDemo])
	assert.True(t, got[domain.SourceUpload])
	assert.False(t, got[domain.SourceS3])
	assert.False(t, got[domain.SourceERP])
}

func TestFit_UsesModelCache(t *testing.T) {
	cache := newFakeModelCache()
	svc := NewElasticityService(testEngineConfig(), cache, nil, nil, nil, testLogger())

	m, fp, err := svc.Fit(t.Context(), linearDemand)
	require.NoError(t, err)
	assert.Equal(t, dataset.Fingerprint(linearDemand), fp)
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, m, cache.models[fp])

	planted := domain.FittedModel{Intercept: 1, Elasticity: -3, N: 4}
	cache.models[fp] = planted
	got, _, err := svc.Fit(t.Context(), linearDemand)
	require.NoError(t, err)
	assert.Equal(t, planted, got)
	assert.Equal(t, 1, cache.sets)
}

func TestFit_CacheFailureFailsOpen(t *testing.T) {
	cache := newFakeModelCache()
	cache.getErr = errCacheDown
	svc := NewElasticityService(testEngineConfig(), cache, nil, nil, nil, testLogger())

	m, _, err := svc.Fit(t.Context(), linearDemand)
	require.NoError(t, err)
	assert.Less(t, m.Elasticity, 0.0)
}

func TestFit_InvalidData(t *testing.T) {
	_, _, err := newTestService().Fit(t.Context(), []domain.Observation{{Price: 1, Qty: 1}})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestFit_ConcurrentCallsAgree(t *testing.T) {
	svc := NewElasticityService(testEngineConfig(), newFakeModelCache(), nil, nil, nil, testLogger())
	want, _, err := svc.Fit(t.Context(), linearDemand)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]domain.FittedModel, 16)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m, _, err := svc.Fit(t.Context(), linearDemand)
			assert.NoError(t, err)
			results[i] = m
		}()
	}
	wg.Wait()

	for _, m := range results {
		assert.Equal(t, want, m)
	}
}

func TestAnalyze_InelasticHasNoProfitMax(t *testing.T) {
	a, err := newTestService().Analyze(t.Context(), linearDemand, domain.AnalyzeParams{PctChange: 10})
	require.NoError(t, err)

	assert.Equal(t, domain.CategoryInelastic, a.Category)
	assert.Equal(t, a.Category.Description(), a.CategoryLabel)
	assert.Equal(t, 25.0, a.BasePrice)
	require.NotNil(t, a.Scenario)
	assert.InDelta(t, 27.5, a.Scenario.New.Price, 1e-9)
	assert.Less(t, a.Scenario.New.Qty, a.Scenario.Base.Qty)

	assert.Equal(t, 15.0, a.UnitCost)
	assert.Nil(t, a.ProfitMax)
	assert.Equal(t, NoteProfitMaxInelastic, a.ProfitMaxNote)
	require.Len(t, a.Metrics, 4)
	assert.Equal(t, report.LabelBasePrice, a.Metrics[0].Label)
}

func TestAnalyze_ElasticSolvesProfitMax(t *testing.T) {
	a, err := newTestService().Analyze(t.Context(), elasticDemand(), domain.AnalyzeParams{PctChange: 5, UnitCost: costPtr(10)})
	require.NoError(t, err)

	assert.Equal(t, domain.CategoryElastic, a.Category)
	require.NotNil(t, a.ProfitMax)
	assert.InDelta(t, 20.0, a.ProfitMax.Price, 1e-6)
	assert.Empty(t, a.ProfitMaxNote)
	assert.Len(t, a.Metrics, 7)
}

func TestAnalyze_Notes(t *testing.T) {
	svc := newTestService()

	a, err := svc.Analyze(t.Context(), elasticDemand(), domain.AnalyzeParams{UnitCost: costPtr(0)})
	require.NoError(t, err)
	assert.Nil(t, a.ProfitMax)
	assert.Equal(t, NoteProfitMaxDegenerate, a.ProfitMaxNote)

	a, err = svc.Analyze(t.Context(), elasticDemand(), domain.AnalyzeParams{UnitCost: costPtr(-2)})
	require.NoError(t, err)
	assert.Equal(t, NoteUnitCostInvalid, a.ProfitMaxNote)

	a, err = svc.Analyze(t.Context(), linearDemand, domain.AnalyzeParams{PctChange: -100})
	require.NoError(t, err)
	assert.Nil(t, a.Scenario)
	assert.Equal(t, NoteScenarioInvalid, a.ScenarioNote)
	assert.Less(t, a.Model.Elasticity, 0.0)
}

func TestAnalyze_ZeroChange(t *testing.T) {
	a, err := newTestService().Analyze(t.Context(), linearDemand, domain.AnalyzeParams{})
	require.NoError(t, err)
	require.NotNil(t, a.Scenario)
	assert.Equal(t, a.Scenario.Base.Price, a.Scenario.New.Price)
	assert.Equal(t, 0.0, a.Scenario.RevenueDelta)
}

func TestAnalyze_FitFailure(t *testing.T) {
	_, err := newTestService().Analyze(t.Context(), []domain.Observation{{Price: 5, Qty: 1}, {Price: 5, Qty: 2}}, domain.AnalyzeParams{})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCurve_Markers(t *testing.T) {
	svc := newTestService()

	c, err := svc.Curve(t.Context(), elasticDemand(), domain.AnalyzeParams{PctChange: 10, UnitCost: costPtr(10)})
	require.NoError(t, err)
	assert.Len(t, c.Fitted, 100)
	assert.Len(t, c.Observed, 6)
	require.Len(t, c.Markers, 3)
	assert.Equal(t, domain.MarkerBasePrice, c.Markers[0].Kind)
	assert.Equal(t, domain.MarkerNewPrice, c.Markers[1].Kind)
	assert.Equal(t, domain.MarkerProfitMax, c.Markers[2].Kind)
	assert.InDelta(t, 20.0, c.Markers[2].Price, 1e-6)

	c, err = svc.Curve(t.Context(), linearDemand, domain.AnalyzeParams{PctChange: 10})
	require.NoError(t, err)
	assert.Len(t, c.Markers, 2)
}

// overflowingDemand fits to an elasticity near -2000, so demand just below
// the observed prices overflows float64.
var overflowingDemand = []domain.Observation{
	{Price: 1, Qty: 1e300},
	{Price: 2, Qty: 1e-300},
}

func TestAnalyze_OverflowBecomesNote(t *testing.T) {
	a, err := newTestService().Analyze(t.Context(), overflowingDemand, domain.AnalyzeParams{})
	require.NoError(t, err)

	assert.Equal(t, domain.CategoryElastic, a.Category)
	require.NotNil(t, a.Scenario)
	assert.Nil(t, a.ProfitMax)
	assert.Equal(t, NoteProfitMaxDegenerate, a.ProfitMaxNote)
	for _, m := range a.Metrics {
		assert.NotContains(t, m.Value, "Inf", m.Label)
		assert.NotContains(t, m.Value, "NaN", m.Label)
	}

	_, err = json.Marshal(a)
	require.NoError(t, err)
}

func TestAnalyze_NonFiniteUnitCost(t *testing.T) {
	svc := newTestService()
	for _, c := range []float64{math.NaN(), math.Inf(1)} {
		a, err := svc.Analyze(t.Context(), elasticDemand(), domain.AnalyzeParams{UnitCost: costPtr(c)})
		require.NoError(t, err)
		assert.Nil(t, a.ProfitMax)
		assert.Equal(t, NoteUnitCostInvalid, a.ProfitMaxNote)

		_, err = json.Marshal(a)
		require.NoError(t, err)
	}
}

func TestCurve_OverflowingDemandDropsPoints(t *testing.T) {
	c, err := newTestService().Curve(t.Context(), overflowingDemand, domain.AnalyzeParams{})
	require.NoError(t, err)

	assert.Greater(t, len(c.Fitted), 1)
	assert.Less(t, len(c.Fitted), 100)
	for _, p := range c.Fitted {
		assert.False(t, math.IsInf(p.Qty, 0))
	}
	require.Len(t, c.Markers, 2)

	_, err = json.Marshal(c)
	require.NoError(t, err)
}
