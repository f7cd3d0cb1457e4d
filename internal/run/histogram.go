package run

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Default binning of the summed-energy spectrum, in MeV.
const (
	DefaultBins = 600
	DefaultMin  = 0.0
	DefaultMax  = 12.0
)

// Histogram is a fixed-width one-dimensional histogram.
type Histogram struct {
	Min       float64   `json:"min"`
	Max       float64   `json:"max"`
	Counts    []float64 `json:"counts"`
	Underflow int       `json:"underflow"`
	Overflow  int       `json:"overflow"`
}

func NewHistogram(bins int, lo, hi float64) *Histogram {
	return &Histogram{Min: lo, Max: hi, Counts: make([]float64, bins)}
}

// Fill bins xs.
func (h *Histogram) Fill(xs []float64) {
	in := make([]float64, 0, len(xs))
	for _, x := range xs {
		switch {
		case x < h.Min:
			h.Underflow++
		case x >= h.Max:
			h.Overflow++
		default:
			in = append(in, x)
		}
	}
	if len(in) == 0 {
		return
	}
	sort.Float64s(in)
	dividers := floats.Span(make([]float64, len(h.Counts)+1), h.Min, h.Max)
	counts := stat.Histogram(nil, dividers, in, nil)
	floats.Add(h.Counts, counts)
}

// BinWidth returns the width of one bin.
func (h *Histogram) BinWidth() float64 {
	return (h.Max - h.Min) / float64(len(h.Counts))
}

// Center returns the centre of bin i.
func (h *Histogram) Center(i int) float64 {
	return h.Min + (float64(i)+0.5)*h.BinWidth()
}

// Entries returns the number of in-range entries.
func (h *Histogram) Entries() int {
	return int(floats.Sum(h.Counts))
}

// Rebin merges groups of n adjacent bins.
func (h *Histogram) Rebin(n int) *Histogram {
	if n <= 1 {
		return h
	}
	out := NewHistogram((len(h.Counts)+n-1)/n, h.Min, h.Max)
	out.Max = h.Min + float64(len(out.Counts)*n)*h.BinWidth()
	for i, c := range h.Counts {
		out.Counts[i/n] += c
	}
	out.Underflow, out.Overflow = h.Underflow, h.Overflow
	return out
}

// Peak returns the index of the fullest bin.
func (h *Histogram) Peak() int {
	if len(h.Counts) == 0 {
		return -1
	}
	return floats.MaxIdx(h.Counts)
}
