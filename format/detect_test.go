package format

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestFormat_String(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{HTML, "HTML"},
		{PDF, "PDF"},
		{XLSX, "XLSX"},
		{Unknown, "Unknown"},
		{Format(99), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.format.String(); got != tt.want {
			t.Errorf("Format(%d).String() = %q, want %q", tt.format, got, tt.want)
		}
	}
}

func TestFormat_Extension(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{HTML, ".html"},
		{PDF, ".pdf"},
		{XLSX, ".xlsx"},
		{Unknown, ""},
	}

	for _, tt := range tests {
		if got := tt.format.Extension(); got != tt.want {
			t.Errorf("Format(%d).Extension() = %q, want %q", tt.format, got, tt.want)
		}
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		filename string
		want     Format
	}{
		{"report.html", HTML},
		{"report.HTML", HTML},
		{"report.htm", HTML},
		{"report.xhtml", HTML},
		{"report.pdf", PDF},
		{"report.Pdf", PDF},
		{"report.xlsx", XLSX},
		{"report.XLSX", XLSX},
		{"report.docx", Unknown},
		{"report.txt", Unknown},
		{"report", Unknown},
		{"", Unknown},
		{"/path/to/file.html", HTML},
		{"/path/to.pdf/file", Unknown},
	}

	for _, tt := range tests {
		if got := Detect(tt.filename); got != tt.want {
			t.Errorf("Detect(%q) = %v, want %v", tt.filename, got, tt.want)
		}
	}
}

func TestDetectFromBytes(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Format
	}{
		{"PDF header", []byte("%PDF-1.4\n%%EOF"), PDF},
		{"HTML with DOCTYPE", []byte("<!DOCTYPE html>\n<html>"), HTML},
		{"HTML with html tag", []byte("<html><head>"), HTML},
		{"whitespace before DOCTYPE", []byte("  \n  <!DOCTYPE HTML PUBLIC"), HTML},
		{"bare table fragment", []byte("<table><tr><td>a</td></tr></table>"), HTML},
		{"empty", []byte{}, Unknown},
		{"random bytes", []byte{0x01, 0x02, 0x03, 0x04, 0x05}, Unknown},
		{"plain text", []byte("Hello, World!"), Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectFromBytes(tt.data); got != tt.want {
				t.Errorf("DetectFromBytes() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectFromBytes_Workbook(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	f.SetCellValue("Sheet1", "A1", "x")
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer() failed: %v", err)
	}

	if got := DetectFromBytes(buf.Bytes()); got != XLSX {
		t.Errorf("DetectFromBytes() = %v, want XLSX", got)
	}
}

func TestDetectFromReader_OtherArchive(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("notes.txt")
	if err != nil {
		t.Fatal(err)
	}
	w.Write([]byte("hello"))
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	data := buf.Bytes()
	got, err := DetectFromReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("DetectFromReader() error = %v", err)
	}
	if got != Unknown {
		t.Errorf("DetectFromReader() = %v, want Unknown", got)
	}
}
