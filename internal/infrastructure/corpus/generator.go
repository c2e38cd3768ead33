package corpus

import (
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/turtacn/Graphyte-Intelligence/internal/domain/risk"
)

// ─────────────────────────────────────────────────────────────────────────────
// Synthetic corpora for demos and tests
// ─────────────────────────────────────────────────────────────────────────────

// DefaultEntities are the named entities of the demo article corpus. Some
// carry a fixed risk profile, see profileFor.
var DefaultEntities = []string{
	"Northstar Logistics Ltd",
	"Silverline Holdings LLC",
	"Vertex Global Corp",
	"Ivan Petrov",
	"Juan Carlos Mendoza",
	"Golden Gate Ventures",
	"Alpha Omega Solutions",
	"Chen Wei Trading",
}

var sources = []string{"Reuters", "Bloomberg", "Financial Times", "The Wall Street Journal", "Local News Daily", "Global Watch"}

var keywords = map[risk.Typology][]string{
	risk.TypologySanctions:         {"OFAC", "sanctioned", "embargo", "export controls", "blocked entity", "SDN list", "trade blacklist"},
	risk.TypologyFraud:             {"Ponzi scheme", "embezzlement", "securities fraud", "wire fraud", "accounting irregularities", "defrauded investors", "fake accounts"},
	risk.TypologyMoneyLaundering:   {"money laundering", "shell company", "offshore accounts", "smurfing", "illicit funds", "cartel money", "unexplained wealth"},
	risk.TypologyCorruption:        {"bribery", "bribes", "kickbacks", "corrupt official", "foreign corrupt practices", "FCPA", "pay-to-play"},
	risk.TypologyHumanTrafficking:  {"human trafficking", "forced labor", "modern slavery", "sex trafficking", "migrant exploitation", "child labor", "smuggling ring"},
	risk.TypologyFinancialDistress: {"bankruptcy", "insolvency", "defaulted", "liquidation", "chapter 11", "missed payments", "debt restructuring"},
	risk.TypologyNeutral:           {"quarterly earnings", "new product launch", "hiring spree", "stock update", "merger talks", "expansion plans", "charity event", "award winner", "partnership announcement"},
}

// %[1]s is the entity, %[2]s the keyword.
var (
	adverseTemplates = []string{
		"Reports indicate that %[1]s was involved in significant %[2]s activities.",
		"Authorities are investigating %[1]s regarding allegations of %[2]s.",
		"New evidence suggests %[1]s played a key role in a %[2]s scandal.",
		"%[1]s denies all accusations related to %[2]s found in the recent leak.",
		"The %[2]s investigation into %[1]s has widened to include international partners.",
	}
	neutralTemplates = []string{
		"%[1]s announced record breaking numbers in their recent %[2]s.",
		"The CEO of %[1]s discussed the new %[2]s at the summit.",
		"Analysts are optimistic about %[1]s following the %[2]s.",
		"%[1]s continues to show growth with its latest %[2]s.",
	}
)

// articleWindow is how far back generated article dates reach.
const articleWindow = 2 * 365 * 24 * time.Hour

// Generator produces labelled synthetic text. The same seed yields the
// same output for the same now.
type Generator struct {
	faker *gofakeit.Faker
	now   time.Time
}

// NewGenerator seeds a generator; seed 0 picks a random seed.
func NewGenerator(seed int64, now time.Time) *Generator {
	return &Generator{faker: gofakeit.New(seed), now: now.UTC()}
}

// Snippet writes one sentence about entity carrying a keyword of t. An
// empty entity gets a fake company name.
func (g *Generator) Snippet(t risk.Typology, entity string) string {
	if entity == "" {
		entity = g.faker.Company()
	}
	templates := adverseTemplates
	if t == risk.TypologyNeutral {
		templates = neutralTemplates
	}
	return fmt.Sprintf(g.faker.RandomString(templates), entity, g.faker.RandomString(keywords[t]))
}

// TrainingExamples draws n snippets with uniformly random labels.
func (g *Generator) TrainingExamples(n int) []risk.TrainingExample {
	all := risk.AllTypologies()
	out := make([]risk.TrainingExample, 0, n)
	for i := 0; i < n; i++ {
		t := all[g.faker.Number(0, len(all)-1)]
		out = append(out, risk.TrainingExample{Text: g.Snippet(t, ""), Label: t})
	}
	return out
}

// Entities returns DefaultEntities followed by extra fake companies.
func (g *Generator) Entities(extra int) []string {
	out := append([]string(nil), DefaultEntities...)
	for i := 0; i < extra; i++ {
		out = append(out, g.faker.Company())
	}
	return out
}

// Articles writes perEntity articles for each entity. Ground truth is the
// typology the snippet was generated from.
func (g *Generator) Articles(entities []string, perEntity int) []risk.Article {
	out := make([]risk.Article, 0, len(entities)*perEntity)
	for _, entity := range entities {
		profile := g.profileFor(entity)
		for i := 0; i < perEntity; i++ {
			t := profile[g.faker.Number(0, len(profile)-1)]
			kw := g.faker.RandomString(keywords[t])
			headline := fmt.Sprintf("%s linked to %s", entity, kw)
			if t == risk.TypologyNeutral {
				headline = fmt.Sprintf("%s news update: %s", entity, kw)
			}
			out = append(out, risk.Article{
				EntityName:  entity,
				Headline:    headline,
				Snippet:     g.Snippet(t, entity),
				Source:      g.faker.RandomString(sources),
				Date:        g.faker.DateRange(g.now.Add(-articleWindow), g.now).Format("2006-01-02"),
				URL:         g.faker.URL(),
				GroundTruth: t,
			})
		}
	}
	return out
}

// profileFor is the typology mix an entity's articles are drawn from.
func (g *Generator) profileFor(entity string) []risk.Typology {
	switch {
	case strings.Contains(entity, "Northstar"):
		return []risk.Typology{
			risk.TypologySanctions, risk.TypologyMoneyLaundering,
			risk.TypologySanctions, risk.TypologyMoneyLaundering,
			risk.TypologySanctions, risk.TypologyMoneyLaundering,
			risk.TypologyNeutral,
		}
	case strings.Contains(entity, "Silverline"):
		return []risk.Typology{risk.TypologyFraud, risk.TypologyFraud, risk.TypologyFraud, risk.TypologyFraud, risk.TypologyNeutral}
	case strings.Contains(entity, "Ivan"):
		return []risk.Typology{risk.TypologyCorruption, risk.TypologyHumanTrafficking}
	case strings.Contains(entity, "Golden"):
		return []risk.Typology{risk.TypologyNeutral}
	default:
		all := risk.AllTypologies()
		profile := make([]risk.Typology, 5)
		for i := range profile {
			profile[i] = all[g.faker.Number(0, len(all)-1)]
		}
		return profile
	}
}

//Personal.AI order the ending
