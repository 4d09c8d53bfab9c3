package kcluster

import "math"

func nanValue() float64 { return math.NaN() }

func infValue() float64 { return math.Inf(1) }
