// Package query parses conversion requests typed by a user.
//
//	24 in to ft
//	2.4 meters in mm
//	1 mi -> in
//	60 miles/hour to km/hour
//	60 miles per hour in km per hour
//	5 feet per inch
//
// Parse returns a Query with the value and the unit words already
// lower-cased (Token.Raw) and singularized (Token.Name). It knows nothing
// about which units exist; resolving the words is the engine's job.
package query
