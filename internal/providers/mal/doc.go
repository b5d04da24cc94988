// Package mal reads MyAnimeList overview pages.
//
// A page is fetched once (Fetch) and then handed to a fixed sequence of
// independent field extractors (Parse). Each extractor queries the parsed
// document by class, id or section heading and returns its field or an
// error; the assembler logs failures and keeps the field's empty value, so
// a changed page degrades to a partial record rather than a failed one.
package mal
