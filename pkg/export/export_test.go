package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterQuotesValues(t *testing.T) {
	data := Dataset{
		Headers: []string{"Name", "Email"},
		Rows: [][]string{
			{"Khan, Ayesha", "ayesha@example.com"},
			{`Sara "Sunny" Ali`, "sara@example.com"},
		},
	}
	out, err := NewCSVExporter().Render(data)
	require.NoError(t, err)
	assert.Equal(t, "Name,Email\n\"Khan, Ayesha\",ayesha@example.com\n\"Sara \"\"Sunny\"\" Ali\",sara@example.com\n", string(out))
}

func TestCSVExporterRejectsRaggedRows(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{Headers: []string{"A", "B"}, Rows: [][]string{{"only"}}})
	assert.Error(t, err)

	_, err = NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	rows := make([][]string, 0, 60)
	for i := 0; i < 60; i++ {
		rows = append(rows, []string{"Student", "CS2021BT001", "Computer Science with a very long department label"})
	}
	out, err := NewPDFExporter().Render(Dataset{Headers: []string{"Name", "Roll Number", "Department"}, Rows: rows}, "Students")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestPDFExporterRenderTranscript(t *testing.T) {
	doc := TranscriptDocument{
		StudentName: "Ayesha Khan",
		RollNumber:  "CS2021BT001",
		Sections: []TranscriptSection{{
			Semester:    "Fall 2024",
			Rows:        []TranscriptRow{{Code: "MATH101", Name: "Calculus", Instructor: "Dr Ali", CreditHours: 3, Grade: "B+"}},
			CreditHours: 3,
			GPA:         "3.30",
		}},
		CreditHours: 3,
		CGPA:        "3.30",
	}
	out, err := NewPDFExporter().RenderTranscript(doc)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
