package mcpserver

// SidecarFormat describes the optional metadata file that may accompany a
// document dropped into the inbox directory.
const SidecarFormat = `# docdesk Inbox Sidecar Format

A file dropped into the inbox is imported as a document owned by the inbox
user. Metadata can be supplied in a sidecar file next to it, named after
the document with a ` + "`" + `.meta.yaml` + "`" + ` suffix:

` + "```" + `
inbox/
  invoice-0042.pdf
  invoice-0042.pdf.meta.yaml
` + "```" + `

## Fields

` + "```" + `yaml
title: Invoice 0042            # OPTIONAL – falls back to the first "# " heading, then the file name
description: ACME, March       # OPTIONAL
type: invoice                  # OPTIONAL – free-form classification
tags: [finance, acme]          # OPTIONAL – list or comma-separated string
expiry: 2024-12-31             # OPTIONAL – YYYY-MM-DD, enables expiry reminders
` + "```" + `

## Rules

1. Only these extensions are imported: pdf, doc, docx, xls, xlsx, txt, md, csv, jpg, jpeg, png, gif.
2. Hidden files, editor backups (` + "`" + `~` + "`" + `) and partial downloads (` + "`" + `.part` + "`" + `) are ignored.
3. Text documents contribute ` + "`" + `#hashtags` + "`" + ` from their body to the tag list.
4. A file whose bytes the inbox user already uploaded is discarded as a duplicate.
5. Imported files and their sidecars are removed from the inbox.
6. Write the sidecar before the document, or within a few hundred milliseconds of it.

## Filter criteria

The ` + "`" + `filter_documents` + "`" + ` tool accepts:

- ` + "`" + `tags` + "`" + ` – any-of match against document tags,
- ` + "`" + `type` + "`" + ` – lower-case file extension, e.g. ` + "`" + `pdf` + "`" + `,
- ` + "`" + `since` + "`" + ` – zero-padded ` + "`" + `YYYY-MM-DD` + "`" + `; documents created on or after it.
`
