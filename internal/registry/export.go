package registry

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/iliyamo/inn-guest-registry/internal/cpf"
	"github.com/iliyamo/inn-guest-registry/internal/model"
)

// byteOrderMark prefixes the export so spreadsheet tools detect UTF-8 and
// render accented names correctly.
const byteOrderMark = "\uFEFF"

const (
	exportDateLayout = "02/01/2006"
	notAvailable     = "N/A"
)

// ExportHeader is the first row of the CSV export.
var ExportHeader = []string{
	"ID",
	"Full name",
	"CPF",
	"Email",
	"Phone",
	"Birth date",
	"Registered at",
	"Total stays",
	"Last check-in",
	"Last check-out",
	"Last stay status",
}

// ExportAll writes every guest with their stay summary to w as CSV, most
// recently registered first.
func (s *Service) ExportAll(ctx context.Context, w io.Writer) error {
	summaries, err := s.ListGuestsWithSummary(ctx)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, byteOrderMark); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return err
	}
	for _, g := range summaries {
		if err := cw.Write(ExportRow(g)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportRow renders one guest summary in the export's column order.
func ExportRow(g model.GuestSummary) []string {
	lastIn, lastOut, lastStatus := notAvailable, notAvailable, notAvailable
	if g.LastStay != nil {
		lastIn = g.LastStay.CheckIn.Format(exportDateLayout)
		lastOut = g.LastStay.CheckOut.Format(exportDateLayout)
		lastStatus = string(g.LastStay.Status)
	}
	return []string{
		g.ID,
		g.FullName,
		cpf.Format(g.CPF),
		g.Email,
		FormatPhone(g.Phone),
		g.BirthDate.Format(exportDateLayout),
		g.RegisteredAt.In(time.UTC).Format(exportDateLayout),
		strconv.Itoa(g.TotalStays),
		lastIn,
		lastOut,
		lastStatus,
	}
}

// FormatPhone renders a Brazilian phone number as (DD) NNNNN-NNNN or
// (DD) NNNN-NNNN.  Other lengths are returned unchanged.
func FormatPhone(digits string) string {
	switch len(digits) {
	case 10:
		return "(" + digits[:2] + ") " + digits[2:6] + "-" + digits[6:]
	case 11:
		return "(" + digits[:2] + ") " + digits[2:7] + "-" + digits[7:]
	}
	return digits
}
