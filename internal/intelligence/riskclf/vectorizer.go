package riskclf

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// DefaultMaxFeatures bounds the vocabulary size.
const DefaultMaxFeatures = 1000

// SparseVector is a row of the TF-IDF matrix. Indices are strictly
// increasing vocabulary positions.
type SparseVector struct {
	Indices []int
	Values  []float64
}

// Len returns the number of stored entries.
func (v SparseVector) Len() int { return len(v.Indices) }

// Vectorizer maps text to L2-normalised TF-IDF rows over a fixed vocabulary.
type Vectorizer struct {
	terms []string // sorted; position is the feature index
	index map[string]int
	idf   []float64
}

// fitVectorizer builds the vocabulary from tokenised documents. The
// maxFeatures terms with the highest document frequency are kept (ties by
// term), then ordered alphabetically. idf uses the smoothed form
// ln((1+n)/(1+df)) + 1.
func fitVectorizer(docs [][]string, maxFeatures int) *Vectorizer {
	if maxFeatures <= 0 {
		maxFeatures = DefaultMaxFeatures
	}

	df := map[string]int{}
	for _, doc := range docs {
		seen := map[string]struct{}{}
		for _, tok := range doc {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	terms := make([]string, 0, len(df))
	for t := range df {
		terms = append(terms, t)
	}
	sort.Slice(terms, func(i, j int) bool {
		if df[terms[i]] != df[terms[j]] {
			return df[terms[i]] > df[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > maxFeatures {
		terms = terms[:maxFeatures]
	}
	sort.Strings(terms)

	n := float64(len(docs))
	idf := make([]float64, len(terms))
	for i, t := range terms {
		idf[i] = math.Log((1+n)/(1+float64(df[t]))) + 1
	}
	return newVectorizer(terms, idf)
}

func newVectorizer(terms []string, idf []float64) *Vectorizer {
	index := make(map[string]int, len(terms))
	for i, t := range terms {
		index[t] = i
	}
	return &Vectorizer{terms: terms, index: index, idf: idf}
}

// VocabularySize returns the number of features.
func (v *Vectorizer) VocabularySize() int { return len(v.terms) }

// Term returns the token of feature i.
func (v *Vectorizer) Term(i int) string { return v.terms[i] }

// Transform vectorises text. Unknown tokens are ignored; a text without any
// known token yields an empty vector.
func (v *Vectorizer) Transform(text string) SparseVector {
	return v.transformTokens(Tokenize(text))
}

func (v *Vectorizer) transformTokens(tokens []string) SparseVector {
	counts := map[int]float64{}
	for _, tok := range tokens {
		if i, ok := v.index[tok]; ok {
			counts[i]++
		}
	}
	if len(counts) == 0 {
		return SparseVector{}
	}

	idx := make([]int, 0, len(counts))
	for i := range counts {
		idx = append(idx, i)
	}
	sort.Ints(idx)

	vals := make([]float64, len(idx))
	for k, i := range idx {
		vals[k] = counts[i] * v.idf[i]
	}
	if norm := floats.Norm(vals, 2); norm > 0 {
		floats.Scale(1/norm, vals)
	}
	return SparseVector{Indices: idx, Values: vals}
}

//Personal.AI order the ending
