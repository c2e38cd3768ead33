package riskclf

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/Graphyte-Intelligence/pkg/errors"
)

func TestPersistLoad_RoundTripIsExact(t *testing.T) {
	m := fitCorpus(t)
	vecBlob, modelBlob, err := Persist(m)
	require.NoError(t, err)

	loaded, err := Load(vecBlob, modelBlob)
	require.NoError(t, err)
	assert.Equal(t, m.Version(), loaded.Version())
	assert.Equal(t, m.Classes(), loaded.Classes())
	assert.True(t, m.TrainedAt().Equal(loaded.TrainedAt()))

	texts := []string{"OFAC embargo", "bribery probe", "quarterly growth", "unrelated words only"}
	want, err := m.Classify(texts)
	require.NoError(t, err)
	got, err := loaded.Classify(texts)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestPersist_Unfitted(t *testing.T) {
	_, _, err := Persist(nil)
	assert.True(t, errors.IsCode(err, errors.ErrCodeModelNotReady))
}

func mutateJSON(t *testing.T, blob []byte, mutate func(map[string]interface{})) []byte {
	t.Helper()
	doc := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(blob, &doc))
	mutate(doc)
	out, err := json.Marshal(doc)
	require.NoError(t, err)
	return out
}

func TestLoad_RejectsInvalidArtifacts(t *testing.T) {
	m := fitCorpus(t)
	vecBlob, modelBlob, err := Persist(m)
	require.NoError(t, err)

	other, err := Fit(trainingCorpus()[:9], WithClock(fixedClock))
	require.NoError(t, err)
	otherVec, _, err := Persist(other)
	require.NoError(t, err)

	cases := []struct {
		name     string
		vec, mdl []byte
	}{
		{"garbage vectorizer", []byte("{not json"), modelBlob},
		{"garbage model", vecBlob, []byte("[]x")},
		{"format version", mutateJSON(t, vecBlob, func(d map[string]interface{}) { d["format_version"] = 99 }), modelBlob},
		{"idf length", mutateJSON(t, vecBlob, func(d map[string]interface{}) { d["idf"] = []float64{1} }), modelBlob},
		{"unsorted vocabulary", mutateJSON(t, vecBlob, func(d map[string]interface{}) {
			v := d["vocabulary"].([]interface{})
			v[0], v[1] = v[1], v[0]
		}), modelBlob},
		{"unknown class", vecBlob, mutateJSON(t, modelBlob, func(d map[string]interface{}) {
			d["classes"].([]interface{})[0] = "piracy"
		})},
		{"missing intercept", vecBlob, mutateJSON(t, modelBlob, func(d map[string]interface{}) {
			d["intercepts"] = []float64{0}
		})},
		{"mismatched pair", otherVec, modelBlob},
		{"tampered coefficients", vecBlob, mutateJSON(t, modelBlob, func(d map[string]interface{}) {
			row := d["coefficients"].([]interface{})[0].([]interface{})
			row[0] = 42.0
		})},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			loaded, err := Load(tc.vec, tc.mdl)
			require.Error(t, err)
			assert.Nil(t, loaded)
			assert.True(t, errors.IsCode(err, errors.ErrCodeModelArtifactInvalid), err.Error())
		})
	}
}

//Personal.AI order the ending
