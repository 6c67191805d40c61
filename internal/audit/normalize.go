package audit

// Normalize reshapes a loader's extraction into the canonical document.
// Form rows take precedence over a raw table when the form carries any.
func Normalize(x Extraction) Document {
	header, sources := ExtractHeader(x)

	rows := FormRows(x.Form)
	if len(rows) == 0 {
		rows = ExtractRows(x.Table)
	}

	return Document{
		Header:  header,
		Rows:    rows,
		Sources: sources,
	}
}
