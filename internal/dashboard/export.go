package dashboard

import (
	"context"
	"fmt"
	"nerisdash/pkg/export"
	"nerisdash/pkg/logger"
	"nerisdash/pkg/relation"
	"nerisdash/pkg/serrors"
)

// ExportName prefixes export file names.
const ExportName = "neris_incidents"

// Export formats.
const (
	FormatZip  = "zip"
	FormatXLSX = "xlsx"
)

// Export downloads the filtered incidents with their casualty rescues,
// incident types and aid rows. Exports are never memoized.
func (s *Service) Export(ctx context.Context, scope Scope, fileFormat string) (*export.Download, error) {
	if fileFormat == "" {
		fileFormat = FormatZip
	}
	if fileFormat != FormatZip && fileFormat != FormatXLSX {
		return nil, serrors.With(serrors.ErrBadRequest, "unknown export format %q", fileFormat)
	}

	stop := logger.Timed(ctx, "export")
	defer stop()

	incidents := s.incidents(scope)
	tables := []struct {
		name string
		rel  *relation.Relation
	}{
		{"incidents.csv", incidents.Relation},
		{"casualty_rescues.csv", incidents.CasualtyRescues(scope.values())},
		{"incident_types.csv", incidents.IncidentTypes(false)},
		{"aids.csv", incidents.Aid()},
	}

	files := make([]export.File, 0, len(tables))
	for _, t := range tables {
		frame, err := t.rel.ExportData(ctx)
		if err != nil {
			return nil, fmt.Errorf("could not export %s: %w", t.name, err)
		}
		files = append(files, export.File{Name: t.name, Frame: frame})
	}

	if fileFormat == FormatXLSX {
		return export.XLSX(files, ExportName, s.now())
	}

	return export.ZipCSV(files, ExportName, s.now())
}
