package corpus

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/Graphyte-Intelligence/internal/domain/risk"
)

var genNow = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func TestGenerator_Deterministic(t *testing.T) {
	a := NewGenerator(7, genNow).TrainingExamples(20)
	b := NewGenerator(7, genNow).TrainingExamples(20)
	assert.Equal(t, a, b)
}

func TestGenerator_TrainingExamples(t *testing.T) {
	examples := NewGenerator(1, genNow).TrainingExamples(200)
	require.Len(t, examples, 200)

	seen := map[risk.Typology]bool{}
	for _, ex := range examples {
		require.True(t, ex.Label.IsValid(), ex.Label)
		assert.NotEmpty(t, ex.Text)
		seen[ex.Label] = true
	}
	assert.Len(t, seen, len(risk.AllTypologies()), "200 draws cover every label")
}

func TestGenerator_SnippetCarriesKeyword(t *testing.T) {
	g := NewGenerator(3, genNow)
	for _, typ := range risk.AllTypologies() {
		s := g.Snippet(typ, "Acme Corp")
		assert.Contains(t, s, "Acme Corp")
		found := false
		for _, kw := range keywords[typ] {
			if strings.Contains(s, kw) {
				found = true
				break
			}
		}
		assert.True(t, found, "%s snippet %q has no %s keyword", typ, s, typ)
	}
}

func TestGenerator_Articles(t *testing.T) {
	g := NewGenerator(5, genNow)
	entities := g.Entities(3)
	require.Len(t, entities, len(DefaultEntities)+3)
	assert.Equal(t, DefaultEntities, entities[:len(DefaultEntities)])

	articles := g.Articles(entities, 4)
	require.Len(t, articles, len(entities)*4)

	earliest := genNow.Add(-articleWindow).Format("2006-01-02")
	for _, a := range articles {
		assert.NotEmpty(t, a.Source)
		assert.NotEmpty(t, a.URL)
		assert.True(t, a.Date >= earliest && a.Date <= "2024-06-01", a.Date)
		assert.True(t, strings.HasPrefix(a.Headline, a.EntityName))

		switch {
		case strings.Contains(a.EntityName, "Golden"):
			assert.Equal(t, risk.TypologyNeutral, a.GroundTruth)
		case strings.Contains(a.EntityName, "Silverline"):
			assert.Contains(t, []risk.Typology{risk.TypologyFraud, risk.TypologyNeutral}, a.GroundTruth)
		case strings.Contains(a.EntityName, "Ivan"):
			assert.Contains(t, []risk.Typology{risk.TypologyCorruption, risk.TypologyHumanTrafficking}, a.GroundTruth)
		}
	}
}

func TestWriteTrainingExamples_ReadBack(t *testing.T) {
	in := NewGenerator(9, genNow).TrainingExamples(15)
	var buf bytes.Buffer
	require.NoError(t, WriteTrainingExamples(&buf, in))

	out, err := ReadTrainingExamples(&buf)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
//Personal.AI order the ending
