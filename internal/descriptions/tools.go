package descriptions

// Tool descriptions shown to MCP clients, with examples and workflows

const (
	AuditValidateFileDescription = `Validate an audit-support document (PDF, DOCX, XLSX or CSV) against the related-party disclosure rules.

**When to use:** A client has returned a completed audit-support form and you need to know whether it is complete and well-formed before the engagement proceeds.

**What it checks:** The header block (Company Name, Year / Period End, Completed By, Date) and every related-party row (Business Name, Criteria Code 1.a-2.f, Transaction Type). Each field is FOUND_AND_VALID, FOUND_BUT_INVALID or NOT_FOUND.

**Examples:**
• Check a returned form: "Validate acme-2023-support.pdf"
• Check a spreadsheet export: "Validate related-parties/beta.xlsx"

**Reading the result:**
• PASS - every field found and valid; can_proceed is true
• PARTIAL_PASS - nothing invalid but some fields are missing
• FAIL - at least one field is invalid (or too few related-party rows)
• INSUFFICIENT_DATA - nothing resembling an audit form was extracted

**Best practices:** Paths are resolved inside the configured directory. Use audit_list_documents first when you do not know the file name.`

	AuditValidateContentDescription = `Validate content that has already been extracted from an audit-support document.

**When to use:** Text came from another system (OCR, an email body, a form API) and only validation is needed.

**Payload:** JSON of the form {"pages": {"1": "page text"}, "form_fields": [{"label": "Company Name", "value": "Acme"}], "table": [["Business", "1.a", "Sale"]]}. Every part is optional; the payload is checked against a JSON schema first.

**Examples:**
• Validate OCR output: pages keyed by page number
• Validate a web form submission: form_fields only, with rows labelled "Row 1 Business Name" and so on

**Best practices:** Put the header block on page "1" and pass table rows in the order name, code, transaction type.`

	AuditListDocumentsDescription = `List the audit-support documents available for validation.

**When to use:** To discover which PDF, DOCX, XLSX and CSV files are in the configured directory before calling audit_validate_file.

**Examples:**
• List everything: no arguments
• Find one client: query "acme"
• Browse a sub-folder: directory "2023/returned"

**Best practices:** Files that are empty or exceed the size limit are left out.`

	AuditRulesInfoDescription = `Describe the validation rules and policy currently in force.

**When to use:** To explain a FAIL to a user, or to check which year policy and minimum row count the server was started with.

**Returns:** The rule for every field, the status values, supported file types, the size limit and the JSON schema accepted by audit_validate_content.`
)
