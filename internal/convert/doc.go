// Package convert computes conversion factors between resolved units.
//
// Factor(g, from, to) returns the number of to-units in one from-unit:
// 1 for the same unit, the stored weight for a direct edge, or the product
// of the weights along the breadth-first shortest path otherwise. Units in
// different components return a *NoPathError.
//
// Every factor is applied by multiplication (Convert), whether it came from
// one edge or many. Compound quantities such as "miles/hour" are two
// independent factors combined by Compound: value * num / den.
//
// Round applies the display rule used by all front ends: five decimal
// places when the magnitude exceeds 1e-5.
package convert
