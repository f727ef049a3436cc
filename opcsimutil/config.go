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

package opcsimutil

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/opcsim"
	"github.com/spatialmodel/opcsim/science/lognormal"
	"github.com/spatialmodel/opcsim/science/mie"
	"github.com/spf13/cast"
)

// setLogging sets the level and format of the standard logger.
func setLogging(level string) error {
	l, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return fmt.Errorf("opcsim: invalid LogLevel: %v", err)
	}
	logrus.SetLevel(l)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339Nano,
	})
	return nil
}

// getFloat64 returns the floating point value of configuration
// variable name.
func getFloat64(name string, cfg *viper.Viper) (float64, error) {
	v, err := cast.ToFloat64E(cfg.Get(name))
	if err != nil {
		return 0, fmt.Errorf("opcsim: invalid value for %s: %v", name, err)
	}
	return v, nil
}

// getFloat64Slice returns configuration variable name as a slice of
// floating point numbers. Values may be given as a list or as a
// comma-separated string.
func getFloat64Slice(name string, cfg *viper.Viper) ([]float64, error) {
	raw := cfg.Get(name)
	if s, ok := raw.(string); ok {
		if strings.TrimSpace(s) == "" {
			return nil, nil
		}
		raw = strings.Split(s, ",")
	}
	strs, err := cast.ToStringSliceE(raw)
	if err != nil {
		return nil, fmt.Errorf("opcsim: invalid value for %s: %v", name, err)
	}
	var o []float64
	for _, s := range strs {
		s = strings.Trim(strings.TrimSpace(s), "[]")
		if s == "" {
			continue
		}
		v, err := cast.ToFloat64E(s)
		if err != nil {
			return nil, fmt.Errorf("opcsim: invalid value for %s: %v", name, err)
		}
		o = append(o, v)
	}
	return o, nil
}

// distribution returns the aerosol distribution named by the
// Distribution.Name configuration variable.
func distribution(cfg *viper.Viper) (*opcsim.AerosolDistribution, error) {
	return namedDistribution(cfg, cfg.GetString("Distribution.Name"))
}

// namedDistribution returns the named aerosol distribution from the table
// file given by the Distribution.Table configuration variable, or from the
// built-in reference table if no file is given.
func namedDistribution(cfg *viper.Viper, name string) (*opcsim.AerosolDistribution, error) {
	var provider opcsim.DistributionProvider = opcsim.ReferenceTable
	if path := os.ExpandEnv(cfg.GetString("Distribution.Table")); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opcsim: opening distribution table: %v", err)
		}
		defer f.Close()
		t, err := opcsim.LoadTable(f)
		if err != nil {
			return nil, err
		}
		provider = t
	}
	return provider.Distribution(name)
}

// evalOptions returns the distribution evaluation options set by the RH
// and Density configuration variables.
func evalOptions(cfg *viper.Viper) ([]opcsim.EvalOption, error) {
	rh, err := getFloat64("RH", cfg)
	if err != nil {
		return nil, err
	}
	rho, err := getFloat64("Density", cfg)
	if err != nil {
		return nil, err
	}
	return []opcsim.EvalOption{opcsim.AtRH(rh), opcsim.Density(rho)}, nil
}

// weightAndBase returns the weight and base set by the Weight and Base
// configuration variables.
func weightAndBase(cfg *viper.Viper) (opcsim.Weight, opcsim.Base, error) {
	w, err := lognormal.ParseWeight(cfg.GetString("Weight"))
	if err != nil {
		return w, 0, err
	}
	b, err := lognormal.ParseBase(cfg.GetString("Base"))
	return w, b, err
}

// wavelength returns the instrument wavelength in micrometers.
func wavelength(cfg *viper.Viper) (float64, error) {
	v, err := getFloat64("Instrument.Wavelength", cfg)
	if err != nil {
		return 0, err
	}
	u, err := opcsim.Length(v, cfg.GetString("Instrument.WavelengthUnits"))
	if err != nil {
		return 0, err
	}
	return opcsim.Micrometers(u)
}

// refractiveIndex parses a material name such as "psl" or a complex
// number such as "1.59+0i".
func refractiveIndex(s string) (complex128, error) {
	s = strings.TrimSpace(s)
	if m, err := opcsim.RefractiveIndex(s); err == nil {
		return m, nil
	}
	m, err := strconv.ParseComplex(s, 128)
	if err != nil {
		return 0, fmt.Errorf("opcsim: %q is neither a known material nor a complex number: %w", s, opcsim.ErrInvalidParameter)
	}
	return m, nil
}

// engine returns a Mie engine with the settings in the Mie configuration
// section.
func engine(cfg *viper.Viper) (*mie.Engine, error) {
	tol, err := getFloat64("Mie.Tolerance", cfg)
	if err != nil {
		return nil, err
	}
	e := &mie.Engine{MaxOrder: cfg.GetInt("Mie.MaxOrder"), Tolerance: tol}
	if e.MaxOrder < 1 || !(e.Tolerance > 0) {
		return nil, fmt.Errorf("opcsim: invalid Mie settings: MaxOrder=%d, Tolerance=%g: %w", e.MaxOrder, e.Tolerance, opcsim.ErrInvalidParameter)
	}
	return e, nil
}

// instrumentOptions returns the options shared by OPCs and nephelometers.
func instrumentOptions(cfg *viper.Viper, theta1, theta2 float64) ([]opcsim.Option, error) {
	eff, err := opcsim.ParseEfficiency(cfg.GetString("Instrument.Efficiency"))
	if err != nil {
		return nil, err
	}
	e, err := engine(cfg)
	if err != nil {
		return nil, err
	}
	opts := []opcsim.Option{
		opcsim.WithTheta(theta1, theta2),
		opcsim.WithEfficiency(eff),
		opcsim.WithEngine(e),
		opcsim.WithAngleSteps(cfg.GetInt("Mie.AngleSteps")),
		opcsim.WithLabel(cfg.GetString("Instrument.Label")),
		opcsim.WithLogger(logrus.StandardLogger()),
	}
	if s := cfg.GetString("Instrument.RefractiveIndex"); s != "" {
		m, err := refractiveIndex(s)
		if err != nil {
			return nil, err
		}
		opts = append(opts, opcsim.WithRefractiveIndex(m))
	}
	if n := cfg.GetInt("Instrument.GridPoints"); n > 0 {
		opts = append(opts, opcsim.WithGridPoints(n))
	}
	return opts, nil
}

// theta returns the scattering angle range, using the given defaults
// when the range is not configured.
func theta(cfg *viper.Viper, default1, default2 float64) (float64, float64, error) {
	t1, err := getFloat64("Instrument.ThetaMin", cfg)
	if err != nil {
		return 0, 0, err
	}
	t2, err := getFloat64("Instrument.ThetaMax", cfg)
	if err != nil {
		return 0, 0, err
	}
	if t1 < 0 {
		t1 = default1
	}
	if t2 < 0 {
		t2 = default2
	}
	return t1, t2, nil
}

// binEdges returns Instrument.BinEdges if it is set, and otherwise
// Instrument.NumBins logarithmically spaced bins between Instrument.Dmin
// and Instrument.Dmax.
func binEdges(cfg *viper.Viper) ([]float64, error) {
	edges, err := getFloat64Slice("Instrument.BinEdges", cfg)
	if err != nil || len(edges) > 0 {
		return edges, err
	}
	dmin, err := getFloat64("Instrument.Dmin", cfg)
	if err != nil {
		return nil, err
	}
	dmax, err := getFloat64("Instrument.Dmax", cfg)
	if err != nil {
		return nil, err
	}
	return opcsim.MakeBins(dmin, dmax, cfg.GetInt("Instrument.NumBins"))
}

// newOPC creates an OPC from the configuration. If calibrate is true,
// the OPC is calibrated with the material and fit in the Calibration
// section.
func newOPC(cfg *viper.Viper, calibrate bool) (*opcsim.OPC, error) {
	wl, err := wavelength(cfg)
	if err != nil {
		return nil, err
	}
	edges, err := binEdges(cfg)
	if err != nil {
		return nil, err
	}
	t1, t2, err := theta(cfg, 32, 88)
	if err != nil {
		return nil, err
	}
	opts, err := instrumentOptions(cfg, t1, t2)
	if err != nil {
		return nil, err
	}
	o, err := opcsim.NewOPC(wl, edges, opts...)
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"wavelength": wl,
		"bins":       o.NumBins(),
		"theta":      []float64{t1, t2},
	}).Debug("opcsim: created OPC")
	if !calibrate {
		return o, nil
	}
	kind, err := opcsim.ParseFitKind(cfg.GetString("Calibration.Fit"))
	if err != nil {
		return nil, err
	}
	m, err := refractiveIndex(cfg.GetString("Calibration.Material"))
	if err != nil {
		return nil, err
	}
	if err := o.Calibrate(m, kind); err != nil {
		return nil, err
	}
	return o, nil
}

// newNephelometer creates a nephelometer from the configuration.
func newNephelometer(cfg *viper.Viper) (*opcsim.Nephelometer, error) {
	wl, err := wavelength(cfg)
	if err != nil {
		return nil, err
	}
	t1, t2, err := theta(cfg, 7, 173)
	if err != nil {
		return nil, err
	}
	opts, err := instrumentOptions(cfg, t1, t2)
	if err != nil {
		return nil, err
	}
	n, err := opcsim.NewNephelometer(wl, opts...)
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"wavelength": wl,
		"theta":      []float64{t1, t2},
	}).Debug("opcsim: created nephelometer")
	return n, nil
}
