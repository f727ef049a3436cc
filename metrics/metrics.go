/*
Copyright © 2018 the opcsim authors.
This file is part of opcsim.

opcsim is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

opcsim is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with opcsim.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package metrics scores how well an instrument's binned output matches
// the true aerosol size distribution.
package metrics

import (
	"errors"
	"fmt"
	"math"

	"github.com/spatialmodel/opcsim"
	"gonum.org/v1/gonum/stat"
)

// ErrDimensionMismatch is returned when compared sequences have
// different lengths.
var ErrDimensionMismatch = errors.New("metrics: dimension mismatch")

// ZeroTolerance is the fraction of the largest true value below which
// a true value is treated as zero. Ratios for such bins are undefined
// and returned as NaN.
const ZeroTolerance = 1e-12

// ratios returns measured/true for each bin.
func ratios(trueV, measured []float64) ([]float64, error) {
	if len(trueV) != len(measured) {
		return nil, fmt.Errorf("metrics: %d true values but %d measured values: %w",
			len(trueV), len(measured), ErrDimensionMismatch)
	}
	var max float64
	for _, v := range trueV {
		max = math.Max(max, math.Abs(v))
	}
	o := make([]float64, len(trueV))
	for i, t := range trueV {
		if math.Abs(t) <= ZeroTolerance*max {
			o[i] = math.NaN()
			continue
		}
		o[i] = measured[i] / t
	}
	return o, nil
}

// NVScore returns the ratio of measured to true particle number in each
// bin. Values above 1 indicate overcounting.
func NVScore(trueN, measuredN []float64) ([]float64, error) {
	return ratios(trueN, measuredN)
}

// VVScore returns the ratio of measured to true particle volume in each
// bin.
func VVScore(trueV, measuredV []float64) ([]float64, error) {
	return ratios(trueV, measuredV)
}

// Summary summarizes a set of per-bin ratios.
type Summary struct {
	// Bins is the number of bins and Undefined the number of them
	// without a ratio.
	Bins, Undefined int

	MeanRatio float64

	// MeanBias is the mean of ratio − 1.
	MeanBias float64

	// MeanAbsDeviation is the mean of |ratio − 1|.
	MeanAbsDeviation float64
}

// Summarize returns summary statistics for the defined ratios. The means
// are NaN if no ratio is defined.
func Summarize(ratios []float64) Summary {
	s := Summary{Bins: len(ratios)}
	var def, dev []float64
	for _, r := range ratios {
		if math.IsNaN(r) {
			s.Undefined++
			continue
		}
		def = append(def, r)
		dev = append(dev, math.Abs(r-1))
	}
	if len(def) == 0 {
		s.MeanRatio, s.MeanBias, s.MeanAbsDeviation = math.NaN(), math.NaN(), math.NaN()
		return s
	}
	s.MeanRatio = stat.Mean(def, nil)
	s.MeanBias = s.MeanRatio - 1
	s.MeanAbsDeviation = stat.Mean(dev, nil)
	return s
}

// Instrument is a binned instrument that can report both the true and the
// measured amount in each of its bins.
type Instrument interface {
	BinMoments(d *opcsim.AerosolDistribution, w opcsim.Weight, opts ...opcsim.EvalOption) ([]float64, error)
	MeasuredMoments(d *opcsim.AerosolDistribution, w opcsim.Weight, opts ...opcsim.EvalOption) ([]float64, error)
	Integrate(d *opcsim.AerosolDistribution, dmin, dmax float64, w opcsim.Weight, opts ...opcsim.EvalOption) (float64, error)
}

var _ Instrument = (*opcsim.OPC)(nil)

// BinScores returns the per-bin ratio of the amount of weight w that
// inst measures for d to the true amount.
func BinScores(inst Instrument, d *opcsim.AerosolDistribution, w opcsim.Weight, opts ...opcsim.EvalOption) ([]float64, error) {
	t, err := inst.BinMoments(d, w, opts...)
	if err != nil {
		return nil, err
	}
	m, err := inst.MeasuredMoments(d, w, opts...)
	if err != nil {
		return nil, err
	}
	return ratios(t, m)
}

// NumberToVolume returns, for each bin, the ratio of measured number to
// true number, together with the total measured number between dmin and
// dmax [µm] divided by the true volume in that range [particles/µm³].
func NumberToVolume(inst Instrument, d *opcsim.AerosolDistribution, dmin, dmax float64, opts ...opcsim.EvalOption) (nv []float64, score float64, err error) {
	if nv, err = BinScores(inst, d, opcsim.Number, opts...); err != nil {
		return nil, math.NaN(), err
	}
	score, err = perTrueVolume(inst, d, dmin, dmax, opcsim.Number, opts)
	return nv, score, err
}

// VolumeToVolume returns, for each bin, the ratio of measured volume to
// true volume, together with the ratio of the total measured volume to
// the total true volume between dmin and dmax [µm]. The total ratio shows
// how per-bin sizing errors propagate to integrated volume.
func VolumeToVolume(inst Instrument, d *opcsim.AerosolDistribution, dmin, dmax float64, opts ...opcsim.EvalOption) (vv []float64, score float64, err error) {
	if vv, err = BinScores(inst, d, opcsim.Volume, opts...); err != nil {
		return nil, math.NaN(), err
	}
	score, err = perTrueVolume(inst, d, dmin, dmax, opcsim.Volume, opts)
	return vv, score, err
}

// perTrueVolume returns the measured amount of weight w between dmin and
// dmax divided by the true volume in that range.
func perTrueVolume(inst Instrument, d *opcsim.AerosolDistribution, dmin, dmax float64, w opcsim.Weight, opts []opcsim.EvalOption) (float64, error) {
	if !(dmin >= 0) || !(dmax > dmin) {
		return math.NaN(), fmt.Errorf("metrics: invalid diameter range [%g, %g]: %w", dmin, dmax, opcsim.ErrInvalidParameter)
	}
	trueV, err := d.CDF(dmin, dmax, opcsim.Volume, opts...)
	if err != nil {
		return math.NaN(), err
	}
	m, err := inst.Integrate(d, dmin, dmax, w, opts...)
	if err != nil {
		return math.NaN(), err
	}
	if trueV <= 0 {
		return math.NaN(), nil
	}
	return m / trueV, nil
}
