package letterdoc

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Letter carries the fields substituted into the recommendation letter template.
type Letter struct {
	ReferenceNumber  string
	VerificationCode string
	StudentName      string
	StudentProgram   string
	CompanyName      string
	Purpose          string
	Duration         string
	IssuedAt         time.Time
}

// Renderer produces recommendation letter documents on university letterhead.
type Renderer struct {
	universityName string
	signatoryName  string
	signatoryTitle string
}

// NewRenderer constructs a renderer with the configured letterhead fields.
func NewRenderer(universityName, signatoryName, signatoryTitle string) *Renderer {
	if universityName == "" {
		universityName = "University Internship Office"
	}
	return &Renderer{
		universityName: universityName,
		signatoryName:  signatoryName,
		signatoryTitle: signatoryTitle,
	}
}

// Render produces the PDF bytes and the SHA-256 hex digest of the content.
// The digest is what verification records store; identical input renders to an
// identical digest because the document embeds no wall-clock timestamps beyond
// the supplied IssuedAt.
func (r *Renderer) Render(letter Letter) ([]byte, string, error) {
	if letter.StudentName == "" || letter.CompanyName == "" {
		return nil, "", fmt.Errorf("letter requires student and company names")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(letter.IssuedAt)
	pdf.SetModificationDate(letter.IssuedAt)
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, strings.ToUpper(r.universityName), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Ref: %s", letter.ReferenceNumber), "", 1, "C", false, 0, "")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 6, letter.IssuedAt.Format("2 January 2006"), "", 1, "R", false, 0, "")
	pdf.Ln(4)
	pdf.CellFormat(0, 6, fmt.Sprintf("To: %s", letter.CompanyName), "", 1, "L", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, "LETTER OF RECOMMENDATION", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "", 11)
	body := fmt.Sprintf(
		"This is to certify that %s, a student of %s, is recommended for %s at %s for a duration of %s. "+
			"The university confirms the student's enrollment and good standing, and requests that your "+
			"organization extend the necessary support during the internship period.",
		letter.StudentName, letter.StudentProgram, letter.Purpose, letter.CompanyName, letter.Duration,
	)
	pdf.MultiCell(0, 6, body, "", "L", false)
	pdf.Ln(10)

	pdf.CellFormat(0, 6, "Sincerely,", "", 1, "L", false, 0, "")
	pdf.Ln(12)
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 6, r.signatoryName, "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, r.signatoryTitle, "", 1, "L", false, 0, "")
	pdf.Ln(8)

	pdf.SetFont("Arial", "I", 8)
	pdf.MultiCell(0, 4, fmt.Sprintf(
		"Verify this document at the university portal using reference number %s and verification code %s.",
		letter.ReferenceNumber, letter.VerificationCode,
	), "", "L", false)

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, "", fmt.Errorf("render letter: %w", err)
	}

	sum := sha256.Sum256(buf.Bytes())
	return buf.Bytes(), hex.EncodeToString(sum[:]), nil
}
