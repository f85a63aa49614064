// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kinship Contributors

package query

import (
	"strings"

	"golang.org/x/text/language"

	kinerr "github.com/kinship-dev/kinship/pkg/errors"
)

// Catalog carries everything locale-dependent in one request: the collation
// tag for text sort keys, translated type labels, and elapsed-time phrasing.
type Catalog struct {
	Tag    language.Tag
	labels map[string]string
	units  [3][2]string // singular and plural of years, months, days
}

// Label translates an event or relationship type name, falling back to the
// untranslated name.
func (c *Catalog) Label(name string) string {
	if t, ok := c.labels[name]; ok {
		return t
	}
	return name
}

var enUnits = [3][2]string{{"year", "years"}, {"month", "months"}, {"day", "days"}}

var catalogs = map[string]*Catalog{
	"en": {
		labels: map[string]string{},
		units:  enUnits,
	},
	"de": {
		labels: map[string]string{
			"Birth":       "Geburt",
			"Death":       "Tod",
			"Burial":      "Beerdigung",
			"Cremation":   "Einäscherung",
			"Marriage":    "Hochzeit",
			"Divorce":     "Scheidung",
			"Baptism":     "Taufe",
			"Christening": "Kleinkindtaufe",
			"Residence":   "Wohnort",
			"Occupation":  "Beruf",
			"Census":      "Volkszählung",
			"Married":     "Verheiratet",
			"Unmarried":   "Unverheiratet",
			"Civil Union": "Eingetragene Partnerschaft",
			"Unknown":     "Unbekannt",
		},
		units: [3][2]string{{"Jahr", "Jahre"}, {"Monat", "Monate"}, {"Tag", "Tage"}},
	},
	"fr": {
		labels: map[string]string{
			"Birth":    "Naissance",
			"Death":    "Décès",
			"Burial":   "Inhumation",
			"Marriage": "Mariage",
			"Divorce":  "Divorce",
			"Baptism":  "Baptême",
			"Married":  "Marié",
			"Unknown":  "Inconnu",
		},
		units: [3][2]string{{"an", "ans"}, {"mois", "mois"}, {"jour", "jours"}},
	},
}

// LookupCatalog resolves a locale parameter ("de", "de_DE", "zh-CN", empty
// for English) to a catalog. Any well-formed tag is accepted for collation;
// label and unit translations fall back to English when no catalog matches
// the base language.
func LookupCatalog(locale string) (*Catalog, error) {
	if locale == "" {
		locale = "en"
	}
	normalized := strings.ReplaceAll(locale, "_", "-")

	tag, err := language.Parse(normalized)
	if err != nil {
		return nil, kinerr.Wrapf(err, kinerr.CodeQueryLocaleInvalid, "invalid locale %q", locale)
	}

	base, _ := tag.Base()
	cat, ok := catalogs[base.String()]
	if !ok {
		cat = catalogs["en"]
	}

	return &Catalog{Tag: tag, labels: cat.labels, units: cat.units}, nil
}
