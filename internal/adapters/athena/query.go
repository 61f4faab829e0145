package athena

import (
	"fmt"
	"regexp"
	"strings"
	"text/template"

	"github.com/samirrijal/ndfdanim/internal/core/domain"
)

// One row per (description, forecast time) with the cell coordinates and
// rounded values aggregated into parallel arrays, ordered by forecast time.
const forecastQuery = `SELECT
  concat(name,' (', unit, ')') as description,
  date_format(
    date_add(
      'second',
      CAST(TRUNCATE(CAST(projected_hour AS REAL) * 3600) AS BIGINT),
      from_unixtime(CAST(reference_time AS BIGINT), 'UTC')
    ) AT TIME ZONE '{{.TimeZone}}',
    '%Y-%m-%d %T %a'
  ) AS forecast_time,
  array_agg(lat) AS latitudes,
  array_agg(lon) AS longitudes,
  array_agg(ROUND(CAST(value AS DECIMAL(6,3)))) AS vals
FROM {{.Latest}}
JOIN {{.Coordinates}}
  ON  {{.Latest}}.area={{.Coordinates}}.area
  AND {{.Latest}}.x={{.Coordinates}}.x
  AND {{.Latest}}.y={{.Coordinates}}.y
JOIN {{.Elements}}
  ON {{.Latest}}.element={{.Elements}}.element
WHERE
  status='opnl'
  AND {{.Latest}}.area='conus'
  AND {{.Latest}}.element='{{.Element}}'
  AND {{.Coordinates}}.x BETWEEN {{.MinX}} AND {{.MaxX}}
  AND {{.Coordinates}}.y BETWEEN {{.MinY}} AND {{.MaxY}}
GROUP BY
  concat(name,' (', unit, ')'),
  date_format(
    date_add(
      'second',
      CAST(TRUNCATE(CAST(projected_hour AS REAL) * 3600) AS BIGINT),
      from_unixtime(CAST(reference_time AS BIGINT), 'UTC')
    ) AT TIME ZONE '{{.TimeZone}}',
    '%Y-%m-%d %T %a'
  )
ORDER BY
  forecast_time
`

var (
	queryTmpl = template.Must(template.New("forecast").Parse(forecastQuery))

	identRe    = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)
	elementRe  = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	timezoneRe = regexp.MustCompile(`^[A-Za-z0-9_+/-]+$`)
)

// Tables names the three tables the query joins.
type Tables struct {
	Latest      string
	Coordinates string
	Elements    string
}

// Template implements ports.QueryBuilder.
type Template struct {
	tables Tables
}

// NewTemplate validates the table names and returns a query builder.
func NewTemplate(tables Tables) (*Template, error) {
	for _, name := range []string{tables.Latest, tables.Coordinates, tables.Elements} {
		if !identRe.MatchString(name) {
			return nil, fmt.Errorf("invalid table name %q", name)
		}
	}
	return &Template{tables: tables}, nil
}

type queryArgs struct {
	Tables
	TimeZone, Element      string
	MinX, MaxX, MinY, MaxY int
}

// Build renders the query text. Element and time zone are spliced into
// string literals, so anything outside their character sets is rejected.
func (t *Template) Build(p domain.QueryParams) (string, error) {
	if !elementRe.MatchString(p.Element) {
		return "", fmt.Errorf("%w: element %q", domain.ErrInvalidRequest, p.Element)
	}
	if !timezoneRe.MatchString(p.Timezone) {
		return "", fmt.Errorf("%w: timezone %q", domain.ErrInvalidRequest, p.Timezone)
	}

	var b strings.Builder
	err := queryTmpl.Execute(&b, queryArgs{
		Tables:   t.tables,
		TimeZone: p.Timezone,
		Element:  p.Element,
		MinX:     p.Bounds.MinX,
		MaxX:     p.Bounds.MaxX,
		MinY:     p.Bounds.MinY,
		MaxY:     p.Bounds.MaxY,
	})
	if err != nil {
		return "", fmt.Errorf("render query: %w", err)
	}
	return b.String(), nil
}
