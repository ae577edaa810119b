// Package query parses the provenance search language.
//
// A query is one or more clauses joined by AND/OR (or & and |), evaluated
// strictly left to right. A clause is a parenthesized group, a bare dotted
// key, or a key: value pair:
//
//	action.plugin: "q2-diversity" AND (metric: "^faith" OR count: >=3)
//	escap\.ed.key: (("4" AND "2") OR "3")
//	environment.framework.version
//
// String literals are double quoted and may be anchored with ^ and $, placed
// either outside or just inside the quotes. Numbers take an optional
// comparison operator. The keywords true, false and null match exactly.
package query
