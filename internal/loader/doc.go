// Package loader reads definition packs into a definition catalog.
//
// A pack is a directory of CUE files, YAML files, or both. All CUE files in
// the directory form one CUE instance; each YAML file is read on its own.
// Both formats share one layout:
//
//	event: Ambush: {
//		chance:  "(Subject->Health + Subject->Fear) / 2"
//		subject: condition: "Subject->Health > 0"
//		objects: Bandit: distance: "Subject->Fear - Object->Fear"
//		results: [{effects: [{magnitude: "-Random->D6"}]}]
//	}
//	site: Keep: {description: "{Subject} stands in the keep"}
//
// Field names are the definition types' json names. Expression fields take
// a string, or an int or bool literal as shorthand for its source text.
//
// Loading records the source position of every definition and property in
// a [SourceMap], so compile errors raised later by Attach and Compile can
// be reported against the file that authored them (see [Diagnose]).
//
// Structural problems are [ValidationError]s with E2xx codes; in
// [LoadModeCollectAll] every one of them is reported, not just the first.
package loader
