package letterdoc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func sampleLetter() Letter {
	return Letter{
		ReferenceNumber:  "LTR-2026-0001",
		VerificationCode: "A1B2C3D4",
		StudentName:      "Jane Mensah",
		StudentProgram:   "BSc Computer Science",
		CompanyName:      "Acme Logistics Ltd",
		Purpose:          "an industrial attachment",
		Duration:         "12 weeks",
		IssuedAt:         time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestRendererRenderProducesStableHash(t *testing.T) {
	renderer := NewRenderer("Test University", "Dr. K. Owusu", "Director")

	first, firstHash, err := renderer.Render(sampleLetter())
	require.NoError(t, err)
	require.NotEmpty(t, first)
	require.Len(t, firstHash, 64)

	_, secondHash, err := renderer.Render(sampleLetter())
	require.NoError(t, err)
	require.Equal(t, firstHash, secondHash)
}

func TestRendererRejectsMissingNames(t *testing.T) {
	renderer := NewRenderer("", "", "")
	letter := sampleLetter()
	letter.StudentName = ""

	_, _, err := renderer.Render(letter)
	require.Error(t, err)
}
