package riskclf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/turtacn/Graphyte-Intelligence/internal/domain/risk"
)

func trainingCorpus() []risk.TrainingExample {
	ex := func(text string, label risk.Typology) risk.TrainingExample {
		return risk.TrainingExample{Text: text, Label: label}
	}
	return []risk.TrainingExample{
		ex("OFAC sanctions designation blocked entity embargo", risk.TypologySanctions),
		ex("Treasury adds shipping firm to SDN list under sanctions", risk.TypologySanctions),
		ex("Export controls embargo violation sanctions OFAC", risk.TypologySanctions),
		ex("Accounting fraud scheme investors defrauded", risk.TypologyFraud),
		ex("Ponzi scheme fraud charges filed against founder", risk.TypologyFraud),
		ex("Executives charged with securities fraud ponzi", risk.TypologyFraud),
		ex("Bribery kickbacks paid to procurement officials", risk.TypologyCorruption),
		ex("Minister accepted bribes corruption probe", risk.TypologyCorruption),
		ex("Corruption charges bribery kickback contract", risk.TypologyCorruption),
		ex("Company opens new headquarters expansion", risk.TypologyNeutral),
		ex("Quarterly earnings beat expectations growth", risk.TypologyNeutral),
		ex("Firm announces partnership product launch expansion", risk.TypologyNeutral),
	}
}

var fixedClock = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

func fitCorpus(t *testing.T) *Model {
	t.Helper()
	m, err := Fit(trainingCorpus(), WithClock(fixedClock))
	require.NoError(t, err)
	return m
}

//Personal.AI order the ending
