// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kinship Contributors

package query

import (
	"fmt"
	"strings"

	"github.com/kinship-dev/kinship/internal/store"
)

// FormatDate renders a partial date as ISO-ish text, omitting unknown
// trailing components: "1906-09-05", "1906-09", "1906", "".
func FormatDate(d store.Date) string {
	if d.Year == 0 {
		return ""
	}
	if d.Month == 0 {
		return fmt.Sprintf("%d", d.Year)
	}
	if d.Day == 0 {
		return fmt.Sprintf("%d-%02d", d.Year, d.Month)
	}
	return fmt.Sprintf("%d-%02d-%02d", d.Year, d.Month, d.Day)
}

// dateOrdinal maps a date to a sortable integer; unknown components sort
// before known ones, and a fully unknown date sorts first.
func dateOrdinal(d store.Date) int64 {
	return int64(d.Year)*10000 + int64(d.Month)*100 + int64(d.Day)
}

// Span is an elapsed time between two partial dates.
type Span struct {
	Years  int
	Months int
	Days   int
}

// spanBetween computes the elapsed time from a to b. Unknown month/day
// components are treated as the start of their period; months borrow at 30
// days. Returns false when either date is fully unknown.
func spanBetween(a, b store.Date) (Span, bool) {
	if a.IsEmpty() || b.IsEmpty() {
		return Span{}, false
	}

	ay, am, ad := normalize(a)
	by, bm, bd := normalize(b)

	if by*10000+bm*100+bd < ay*10000+am*100+ad {
		ay, am, ad, by, bm, bd = by, bm, bd, ay, am, ad
	}

	years := by - ay
	months := bm - am
	days := bd - ad
	if days < 0 {
		days += 30
		months--
	}
	if months < 0 {
		months += 12
		years--
	}
	return Span{Years: years, Months: months, Days: days}, true
}

func normalize(d store.Date) (int, int, int) {
	m, day := d.Month, d.Day
	if m == 0 {
		m = 1
	}
	if day == 0 {
		day = 1
	}
	return d.Year, m, day
}

// FormatSpan renders a span in the catalog's locale, dropping leading zero
// groups: "62 years, 1 month, 19 days", "3 months, 2 days", "0 days".
func (c *Catalog) FormatSpan(s Span) string {
	var parts []string
	if s.Years > 0 {
		parts = append(parts, c.unit(s.Years, 0))
	}
	if len(parts) > 0 || s.Months > 0 {
		parts = append(parts, c.unit(s.Months, 1))
	}
	parts = append(parts, c.unit(s.Days, 2))
	return strings.Join(parts, ", ")
}

func (c *Catalog) unit(n, i int) string {
	name := c.units[i][1]
	if n == 1 {
		name = c.units[i][0]
	}
	return fmt.Sprintf("%d %s", n, name)
}
