// Package markdown turns source files into documents: discovery over an
// fs.FS, front-matter decoding against a JSON schema, and rendering through
// an ordered list of goldmark stages.
package markdown
