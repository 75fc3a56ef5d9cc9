// Package parser tokenizes raw SQL submissions and exposes just enough
// structure for the safety filter and the rubric: statements split on
// top-level semicolons, LIMIT clauses, and keyword phrases.
//
// Nothing here rejects input. Malformed SQL still yields a best-effort token
// stream, and every token keeps its original text so a statement can be
// rebuilt byte for byte.
package parser
