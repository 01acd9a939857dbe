package extract

import (
	"context"
	"testing"

	"paperlens/internal/util"

	"github.com/stretchr/testify/require"
)

func TestIsPDF(t *testing.T) {
	require.True(t, IsPDF([]byte("%PDF-1.7\n...")))
	require.True(t, IsPDF([]byte("\r\n%PDF-1.4")))
	require.False(t, IsPDF([]byte("PK\x03\x04 docx archive")))
	require.False(t, IsPDF(nil))
}

func TestExtractRejectsNonPDF(t *testing.T) {
	_, err := PDFExtractor{}.Extract(context.Background(), []byte("Just some plain text notes"))
	require.ErrorIs(t, err, util.ErrUnsupportedFormat)
}

func TestExtractCorruptPDF(t *testing.T) {
	_, err := PDFExtractor{}.Extract(context.Background(), []byte("%PDF-1.4\nthis is not a real object table"))
	require.ErrorIs(t, err, util.ErrCorruptFile)
}
