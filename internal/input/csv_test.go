package input

import (
	"strings"
	"testing"
)

func TestParseCSV(t *testing.T) {
	in := strings.NewReader("Filename,COMPANY\nreport.pdf,Acme\nmissing.pdf,Acme\nnote.txt,Globex\n")
	records, err := ParseCSV(in)
	if err != nil {
		t.Fatalf("ParseCSV error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[0].Filename != "report.pdf" || records[0].Company != "Acme" {
		t.Errorf("unexpected first record: %+v", records[0])
	}
	if records[2].Filename != "note.txt" || records[2].Company != "Globex" {
		t.Errorf("unexpected last record: %+v", records[2])
	}
}

func TestParseCSVColumnOrderIrrelevant(t *testing.T) {
	in := strings.NewReader("extra,company,filename\nskip,Acme,a.pdf\n")
	records, err := ParseCSV(in)
	if err != nil {
		t.Fatalf("ParseCSV error: %v", err)
	}
	if len(records) != 1 || records[0].Filename != "a.pdf" || records[0].Company != "Acme" {
		t.Errorf("unexpected records: %+v", records)
	}
}

func TestParseCSVMissingColumn(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{name: "missing company", in: "filename\na.pdf\n"},
		{name: "missing filename", in: "company\nAcme\n"},
		{name: "empty input", in: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseCSV(strings.NewReader(tc.in)); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestParseCSVSkipsBlankRows(t *testing.T) {
	in := strings.NewReader("filename,company\na.pdf,Acme\n,\nb.pdf,Globex\n")
	records, err := ParseCSV(in)
	if err != nil {
		t.Fatalf("ParseCSV error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected blank row skipped, got %d records", len(records))
	}
	if records[1].Filename != "b.pdf" {
		t.Errorf("order not preserved: %+v", records)
	}
}

func TestParseCSVTrimsValuesAndBOM(t *testing.T) {
	in := strings.NewReader("\uFEFFfilename,company\n  a.pdf , Acme \n")
	records, err := ParseCSV(in)
	if err != nil {
		t.Fatalf("ParseCSV error: %v", err)
	}
	if records[0].Filename != "a.pdf" || records[0].Company != "Acme" {
		t.Errorf("values not trimmed: %+v", records[0])
	}
}
