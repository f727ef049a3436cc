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

// Package opcsimutil contains the opcsim command-line interface and its
// configuration handling.
package opcsimutil

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/opcsim"
	"github.com/spatialmodel/opcsim/metrics"
	"github.com/spatialmodel/opcsim/science/mie"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gonum.org/v1/gonum/floats"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to opcsim.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "LogLevel",
			usage: `
              LogLevel specifies the logging level: one of debug, info,
              warning, or error.`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Distribution.Name",
			usage: `
              Distribution.Name specifies the name of the aerosol
              distribution to use, for example "urban" or "marine".`,
			shorthand:  "d",
			defaultVal: "urban",
			flagsets:   []*pflag.FlagSet{pdfCmd.Flags(), cdfCmd.Flags(), opcCmd.PersistentFlags(), nephCmd.Flags(), scoreCmd.Flags()},
		},
		{
			name: "Distribution.Table",
			usage: `
              Distribution.Table specifies the path to a TOML file holding
              a table of aerosol distributions. If it is empty, the built-in
              reference distributions are used.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{pdfCmd.Flags(), cdfCmd.Flags(), opcCmd.PersistentFlags(), nephCmd.Flags(), scoreCmd.Flags()},
		},
		{
			name: "RH",
			usage: `
              RH specifies the relative humidity [%] at which particles are
              evaluated. Hygroscopic modes grow with increasing humidity.`,
			defaultVal: 0.,
			flagsets:   []*pflag.FlagSet{pdfCmd.Flags(), cdfCmd.Flags(), opcCmd.PersistentFlags(), nephCmd.Flags(), scoreCmd.Flags()},
		},
		{
			name: "Density",
			usage: `
              Density specifies the particle density [g/cm³] used to
              convert volumes measured by an OPC to mass.`,
			defaultVal: 1.65,
			flagsets:   []*pflag.FlagSet{pdfCmd.Flags(), cdfCmd.Flags(), opcCmd.PersistentFlags(), nephCmd.Flags(), scoreCmd.Flags()},
		},
		{
			name: "Weight",
			usage: `
              Weight specifies the particle property that distributions are
              weighted by: number, surface, volume, or mass.`,
			shorthand:  "w",
			defaultVal: "number",
			flagsets:   []*pflag.FlagSet{pdfCmd.Flags(), cdfCmd.Flags(), opcCmd.PersistentFlags()},
		},
		{
			name: "Base",
			usage: `
              Base specifies the diameter transform of probability
              densities: log10, log, or none.`,
			defaultVal: "log10",
			flagsets:   []*pflag.FlagSet{pdfCmd.Flags(), opcCmd.PersistentFlags()},
		},
		{
			name: "Dmin",
			usage: `
              Dmin specifies the smallest particle diameter [µm] to
              evaluate.`,
			defaultVal: 0.01,
			flagsets:   []*pflag.FlagSet{pdfCmd.Flags(), cdfCmd.Flags()},
		},
		{
			name: "Dmax",
			usage: `
              Dmax specifies the largest particle diameter [µm] to
              evaluate.`,
			defaultVal: 10.,
			flagsets:   []*pflag.FlagSet{pdfCmd.Flags(), cdfCmd.Flags()},
		},
		{
			name: "Points",
			usage: `
              Points specifies the number of logarithmically spaced
              diameters at which to evaluate a distribution.`,
			defaultVal: 50,
			flagsets:   []*pflag.FlagSet{pdfCmd.Flags()},
		},
		{
			name: "Instrument.Label",
			usage: `
              Instrument.Label is a name for the simulated instrument.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{opcCmd.PersistentFlags(), nephCmd.Flags(), scoreCmd.Flags()},
		},
		{
			name: "Instrument.Wavelength",
			usage: `
              Instrument.Wavelength specifies the wavelength of the laser,
              in units of Instrument.WavelengthUnits.`,
			defaultVal: 0.658,
			flagsets:   []*pflag.FlagSet{mieCmd.Flags(), opcCmd.PersistentFlags(), nephCmd.Flags(), scoreCmd.Flags()},
		},
		{
			name: "Instrument.WavelengthUnits",
			usage: `
              Instrument.WavelengthUnits specifies the units of
              Instrument.Wavelength: nm, um, µm, mm, cm, or m.`,
			defaultVal: "um",
			flagsets:   []*pflag.FlagSet{mieCmd.Flags(), opcCmd.PersistentFlags(), nephCmd.Flags(), scoreCmd.Flags()},
		},
		{
			name: "Instrument.Dmin",
			usage: `
              Instrument.Dmin specifies the lower edge [µm] of the smallest
              OPC bin.`,
			defaultVal: 0.3,
			flagsets:   []*pflag.FlagSet{opcCmd.PersistentFlags(), scoreCmd.Flags()},
		},
		{
			name: "Instrument.Dmax",
			usage: `
              Instrument.Dmax specifies the upper edge [µm] of the largest
              OPC bin.`,
			defaultVal: 10.,
			flagsets:   []*pflag.FlagSet{opcCmd.PersistentFlags(), scoreCmd.Flags()},
		},
		{
			name: "Instrument.NumBins",
			usage: `
              Instrument.NumBins specifies the number of logarithmically
              spaced OPC bins between Instrument.Dmin and Instrument.Dmax.`,
			defaultVal: 10,
			flagsets:   []*pflag.FlagSet{opcCmd.PersistentFlags(), scoreCmd.Flags()},
		},
		{
			name: "Instrument.BinEdges",
			usage: `
              Instrument.BinEdges specifies the OPC bin edges [µm]. If it is
              set, Instrument.Dmin, Instrument.Dmax, and Instrument.NumBins
              are ignored.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{opcCmd.PersistentFlags(), scoreCmd.Flags()},
		},
		{
			name: "Instrument.ThetaMin",
			usage: `
              Instrument.ThetaMin specifies the smallest scattering angle
              [degrees] collected by the detector. Negative values select the
              instrument default: 32 for OPCs and 7 for nephelometers.`,
			defaultVal: -1.,
			flagsets:   []*pflag.FlagSet{mieCmd.Flags(), opcCmd.PersistentFlags(), nephCmd.Flags(), scoreCmd.Flags()},
		},
		{
			name: "Instrument.ThetaMax",
			usage: `
              Instrument.ThetaMax specifies the largest scattering angle
              [degrees] collected by the detector. Negative values select the
              instrument default: 88 for OPCs and 173 for nephelometers.`,
			defaultVal: -1.,
			flagsets:   []*pflag.FlagSet{mieCmd.Flags(), opcCmd.PersistentFlags(), nephCmd.Flags(), scoreCmd.Flags()},
		},
		{
			name: "Instrument.Efficiency",
			usage: `
              Instrument.Efficiency specifies the counting efficiency as a
              number or as an expression of the particle diameter 'dp' [µm],
              for example "1 / (1 + pow(0.3 / dp, 4))".`,
			defaultVal: "1",
			flagsets:   []*pflag.FlagSet{opcCmd.PersistentFlags(), nephCmd.Flags(), scoreCmd.Flags()},
		},
		{
			name: "Instrument.RefractiveIndex",
			usage: `
              Instrument.RefractiveIndex, if set, overrides the refractive
              index of every mode. It may be a material name such as "psl"
              or a complex number such as "1.59+0i".`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{opcCmd.PersistentFlags(), nephCmd.Flags(), scoreCmd.Flags()},
		},
		{
			name: "Instrument.GridPoints",
			usage: `
              Instrument.GridPoints specifies the number of integration
              points per OPC bin or per nephelometer mode. Zero selects the
              instrument default.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{opcCmd.PersistentFlags(), nephCmd.Flags(), scoreCmd.Flags()},
		},
		{
			name: "Calibration.Material",
			usage: `
              Calibration.Material specifies the material of the particles
              an OPC is calibrated with, as a material name such as "psl"
              or a complex refractive index such as "1.59+0i".`,
			defaultVal: "psl",
			flagsets:   []*pflag.FlagSet{opcMeasureCmd.Flags(), scoreCmd.Flags()},
		},
		{
			name: "Calibration.Fit",
			usage: `
              Calibration.Fit specifies the calibration curve: spline,
              linear, exponential, or tanh.`,
			defaultVal: "spline",
			flagsets:   []*pflag.FlagSet{opcMeasureCmd.Flags(), scoreCmd.Flags()},
		},
		{
			name: "Calibration.Distribution",
			usage: `
              Calibration.Distribution specifies the name of the dry
              distribution that a nephelometer is calibrated with. If it is
              empty, Distribution.Name is used.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{nephCmd.Flags()},
		},
		{
			name: "Mie.Diameter",
			usage: `
              Mie.Diameter specifies the particle diameter [µm] for Mie
              calculations when no diameters are given as arguments.`,
			defaultVal: 1.,
			flagsets:   []*pflag.FlagSet{mieCmd.Flags()},
		},
		{
			name: "Mie.Material",
			usage: `
              Mie.Material specifies the particle material for Mie
              calculations, as a material name or a complex refractive index.`,
			defaultVal: "psl",
			flagsets:   []*pflag.FlagSet{mieCmd.Flags()},
		},
		{
			name: "Mie.MaxOrder",
			usage: `
              Mie.MaxOrder specifies the maximum number of terms in the Mie
              series.`,
			defaultVal: mie.DefaultMaxOrder,
			flagsets:   []*pflag.FlagSet{mieCmd.Flags(), opcCmd.PersistentFlags(), nephCmd.Flags(), scoreCmd.Flags()},
		},
		{
			name: "Mie.Tolerance",
			usage: `
              Mie.Tolerance specifies the convergence tolerance of the Mie
              series.`,
			defaultVal: mie.DefaultTolerance,
			flagsets:   []*pflag.FlagSet{mieCmd.Flags(), opcCmd.PersistentFlags(), nephCmd.Flags(), scoreCmd.Flags()},
		},
		{
			name: "Mie.AngleSteps",
			usage: `
              Mie.AngleSteps specifies the number of scattering angles used
              to integrate over the detector aperture.`,
			defaultVal: 100,
			flagsets:   []*pflag.FlagSet{mieCmd.Flags(), opcCmd.PersistentFlags(), nephCmd.Flags(), scoreCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("OPCSIM")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case []string:
				if option.shorthand == "" {
					set.StringSlice(option.name, option.defaultVal.([]string), option.usage)
				} else {
					set.StringSliceP(option.name, option.shorthand, option.defaultVal.([]string), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(pdfCmd)
	Root.AddCommand(cdfCmd)
	Root.AddCommand(mieCmd)
	Root.AddCommand(opcCmd)
	opcCmd.AddCommand(opcHistogramCmd)
	opcCmd.AddCommand(opcMeasureCmd)
	Root.AddCommand(nephCmd)
	Root.AddCommand(scoreCmd)
}

// setConfig finds and reads in the configuration file, if there is one,
// and sets up logging.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("opcsim: problem reading configuration file: %v", err)
		}
	}
	return setLogging(Cfg.GetString("LogLevel"))
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "opcsim",
	Short: "Simulate low-cost optical particle sensors.",
	Long: `opcsim simulates the response of optical particle counters (OPCs) and
nephelometers to multimodal lognormal aerosol size distributions.
Use the subcommands specified below to access the model functionality.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'OPCSIM_var' where 'var' is the
name of the variable to be set.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of opcsim.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("opcsim v%s\n", opcsim.Version)
	},
	DisableAutoGenTag: true,
}

// newTable returns a tab-separated table writer for cmd's output.
func newTable(cmd *cobra.Command) *tabwriter.Writer {
	return tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 1, '\t', 0)
}

var pdfCmd = &cobra.Command{
	Use:   "pdf",
	Short: "Print the probability density of a distribution",
	Long: `pdf prints the probability density of the selected distribution, with
the selected weight and base, at Points logarithmically spaced diameters
between Dmin and Dmax.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := distribution(Cfg)
		if err != nil {
			return err
		}
		w, b, err := weightAndBase(Cfg)
		if err != nil {
			return err
		}
		opts, err := evalOptions(Cfg)
		if err != nil {
			return err
		}
		dmin, err := getFloat64("Dmin", Cfg)
		if err != nil {
			return err
		}
		dmax, err := getFloat64("Dmax", Cfg)
		if err != nil {
			return err
		}
		n := Cfg.GetInt("Points")
		if n < 2 || !(dmin > 0 && dmin < dmax) {
			return fmt.Errorf("opcsim: invalid diameter grid: %d points in [%g, %g]: %w", n, dmin, dmax, opcsim.ErrInvalidParameter)
		}
		dps := floats.LogSpan(make([]float64, n), dmin, dmax)
		pdf, err := d.PDF(dps, w, b, opts...)
		if err != nil {
			return err
		}
		t := newTable(cmd)
		fmt.Fprintf(t, "dp\td%s/d%sDp\n", w, b)
		for i, dp := range dps {
			fmt.Fprintf(t, "%.6g\t%.6g\n", dp, pdf[i])
		}
		return t.Flush()
	},
	DisableAutoGenTag: true,
}

var cdfCmd = &cobra.Command{
	Use:   "cdf",
	Short: "Print the integral of a distribution",
	Long: `cdf prints the integral of the selected distribution, with the selected
weight, between Dmin and Dmax for each mode and for the whole distribution.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := distribution(Cfg)
		if err != nil {
			return err
		}
		w, _, err := weightAndBase(Cfg)
		if err != nil {
			return err
		}
		opts, err := evalOptions(Cfg)
		if err != nil {
			return err
		}
		dmin, err := getFloat64("Dmin", Cfg)
		if err != nil {
			return err
		}
		dmax, err := getFloat64("Dmax", Cfg)
		if err != nil {
			return err
		}
		t := newTable(cmd)
		fmt.Fprintf(t, "mode\t%s\ttotal %s\n", w, w)
		labels := []string{""}
		for _, m := range d.Modes() {
			labels = append(labels, m.Label)
		}
		for _, label := range labels {
			o := opts
			name := "all"
			if label != "" {
				o = append(append([]opcsim.EvalOption{}, opts...), opcsim.OnlyMode(label))
				name = label
			}
			v, err := d.CDF(dmin, dmax, w, o...)
			if err != nil {
				return err
			}
			total, err := d.Total(w, o...)
			if err != nil {
				return err
			}
			fmt.Fprintf(t, "%s\t%.6g\t%.6g\n", name, v, total)
		}
		return t.Flush()
	},
	DisableAutoGenTag: true,
}

var mieCmd = &cobra.Command{
	Use:   "mie [diameter...]",
	Short: "Print Mie scattering properties of particles",
	Long: `mie prints the Mie efficiencies and scattering cross sections of
particles of Mie.Material at the given diameters [µm], or at Mie.Diameter
if no diameters are given. The angular cross section is integrated over
the scattering angles collected by an OPC detector.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := engine(Cfg)
		if err != nil {
			return err
		}
		wl, err := wavelength(Cfg)
		if err != nil {
			return err
		}
		m, err := refractiveIndex(Cfg.GetString("Mie.Material"))
		if err != nil {
			return err
		}
		t1, t2, err := theta(Cfg, 32, 88)
		if err != nil {
			return err
		}
		var dps []float64
		for _, a := range args {
			dp, err := strconv.ParseFloat(a, 64)
			if err != nil {
				return fmt.Errorf("opcsim: invalid diameter %q: %v", a, err)
			}
			dps = append(dps, dp)
		}
		if len(dps) == 0 {
			dp, err := getFloat64("Mie.Diameter", Cfg)
			if err != nil {
				return err
			}
			dps = []float64{dp}
		}
		t := newTable(cmd)
		fmt.Fprintln(t, "dp\tx\tQext\tQsca\tQabs\tQback\tg\tCsca [µm²]\tCscat [cm²]\tCscat [m²]")
		for _, dp := range dps {
			if !(dp > 0) {
				return fmt.Errorf("opcsim: diameter must be > 0 but is %g: %w", dp, opcsim.ErrInvalidParameter)
			}
			x := mie.SizeParameter(dp, wl)
			q, err := e.Efficiencies(x, m)
			if err != nil {
				return err
			}
			cs, err := e.CrossSection(dp, wl, m)
			if err != nil {
				return err
			}
			cscat, err := e.AngularCrossSection(dp, wl, m, t1, t2, Cfg.GetInt("Mie.AngleSteps"))
			if err != nil {
				return err
			}
			fmt.Fprintf(t, "%.6g\t%.6g\t%.6g\t%.6g\t%.6g\t%.6g\t%.6g\t%.6g\t%.6g\t%.6g\n",
				dp, x, q.Ext, q.Sca, q.Abs, q.Back, q.G, cs, cscat, opcsim.CrossSectionArea(cscat).Value())
		}
		return t.Flush()
	},
	DisableAutoGenTag: true,
}

var opcCmd = &cobra.Command{
	Use:   "opc",
	Short: "Simulate an optical particle counter",
	Long: `opc simulates an optical particle counter. Use the subcommands specified
below to choose what to calculate.`,
	DisableAutoGenTag: true,
}

var opcHistogramCmd = &cobra.Command{
	Use:   "histogram",
	Short: "Print the scattering histogram of an OPC",
	Long: `histogram prints, for each OPC bin, the total scattering cross section
[cm²/cm³] of the particles in the bin with the selected weight, along with
the true integral of the distribution over the bin.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		o, err := newOPC(Cfg, false)
		if err != nil {
			return err
		}
		d, err := distribution(Cfg)
		if err != nil {
			return err
		}
		w, _, err := weightAndBase(Cfg)
		if err != nil {
			return err
		}
		opts, err := evalOptions(Cfg)
		if err != nil {
			return err
		}
		h, err := o.Histogram(d, w, opts...)
		if err != nil {
			return err
		}
		truth, err := o.BinMoments(d, w, opts...)
		if err != nil {
			return err
		}
		t := newTable(cmd)
		fmt.Fprintf(t, "dmin\tdmid\tdmax\tscattering\ttrue %s\n", w)
		for i, b := range o.Bins() {
			fmt.Fprintf(t, "%.4g\t%.4g\t%.4g\t%.6g\t%.6g\n", b[0], b[1], b[2], h[i], truth[i])
		}
		return t.Flush()
	},
	DisableAutoGenTag: true,
}

var opcMeasureCmd = &cobra.Command{
	Use:   "measure",
	Short: "Print the size distribution measured by an OPC",
	Long: `measure calibrates an OPC with Calibration.Material and prints, for each
bin, the concentration with the selected weight that the OPC reports,
the measured density with the selected base, and the true integral of
the distribution over the bin.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		o, err := newOPC(Cfg, true)
		if err != nil {
			return err
		}
		d, err := distribution(Cfg)
		if err != nil {
			return err
		}
		w, b, err := weightAndBase(Cfg)
		if err != nil {
			return err
		}
		opts, err := evalOptions(Cfg)
		if err != nil {
			return err
		}
		measured, err := o.MeasuredMoments(d, w, opts...)
		if err != nil {
			return err
		}
		hist, err := o.MeasuredHistogram(d, w, b, opts...)
		if err != nil {
			return err
		}
		truth, err := o.BinMoments(d, w, opts...)
		if err != nil {
			return err
		}
		t := newTable(cmd)
		fmt.Fprintf(t, "dmin\tdmid\tdmax\tmeasured %s\td%s/d%sDp\ttrue %s\n", w, w, b, w)
		for i, bin := range o.Bins() {
			fmt.Fprintf(t, "%.4g\t%.4g\t%.4g\t%.6g\t%.6g\t%.6g\n", bin[0], bin[1], bin[2], measured[i], hist[i], truth[i])
		}
		return t.Flush()
	},
	DisableAutoGenTag: true,
}

var nephCmd = &cobra.Command{
	Use:   "neph",
	Short: "Simulate a nephelometer",
	Long: `neph calibrates a nephelometer with the dry Calibration.Distribution and
prints the total scattering and the PM1, PM2.5, and PM10 mass
concentrations [µg/m³] it reports for the selected distribution, along with
the true dry mass concentrations.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := newNephelometer(Cfg)
		if err != nil {
			return err
		}
		d, err := distribution(Cfg)
		if err != nil {
			return err
		}
		ref := d
		if name := Cfg.GetString("Calibration.Distribution"); name != "" {
			if ref, err = namedDistribution(Cfg, name); err != nil {
				return err
			}
		}
		if err := n.Calibrate(ref); err != nil {
			return err
		}
		opts, err := evalOptions(Cfg)
		if err != nil {
			return err
		}
		r, err := n.Measure(d, opts...)
		if err != nil {
			return err
		}
		t := newTable(cmd)
		fmt.Fprintln(t, "quantity\tmeasured\ttrue")
		fmt.Fprintf(t, "Cscat [cm²/cm³]\t%.6g\t\n", r.Cscat)
		for _, pm := range []struct {
			name          string
			cut, measured float64
		}{{"PM1", 1, r.PM1}, {"PM2.5", 2.5, r.PM25}, {"PM10", 10, r.PM10}} {
			truth, err := d.CDF(0, pm.cut, opcsim.Mass)
			if err != nil {
				return err
			}
			fmt.Fprintf(t, "%s [µg/m³]\t%.6g\t%.6g\n", pm.name, pm.measured, truth)
		}
		return t.Flush()
	},
	DisableAutoGenTag: true,
}

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score the accuracy of a calibrated OPC",
	Long: `score calibrates an OPC with Calibration.Material and prints the ratio of
measured to true number and volume in each bin, a summary of the ratios,
and the measured number and volume over the size range of the OPC divided
by the true volume in that range.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		o, err := newOPC(Cfg, true)
		if err != nil {
			return err
		}
		d, err := distribution(Cfg)
		if err != nil {
			return err
		}
		opts, err := evalOptions(Cfg)
		if err != nil {
			return err
		}
		edges := o.Edges()
		dmin, dmax := edges[0], edges[len(edges)-1]
		nv, nvTotal, err := metrics.NumberToVolume(o, d, dmin, dmax, opts...)
		if err != nil {
			return err
		}
		vv, vvTotal, err := metrics.VolumeToVolume(o, d, dmin, dmax, opts...)
		if err != nil {
			return err
		}
		t := newTable(cmd)
		fmt.Fprintln(t, "bin\tdmid\tnumber ratio\tvolume ratio")
		for i, mid := range o.Midpoints() {
			fmt.Fprintf(t, "%d\t%.4g\t%.4g\t%.4g\n", i, mid, nv[i], vv[i])
		}
		for _, s := range []struct {
			name string
			metrics.Summary
		}{{"number", metrics.Summarize(nv)}, {"volume", metrics.Summarize(vv)}} {
			fmt.Fprintf(t, "%s summary\tmean ratio %.4g\tmean bias %.4g\tmean abs. deviation %.4g\n",
				s.name, s.MeanRatio, s.MeanBias, s.MeanAbsDeviation)
		}
		fmt.Fprintf(t, "number to volume [1/µm³]\t%.4g\t\t\n", nvTotal)
		fmt.Fprintf(t, "volume to volume\t%.4g\t\t\n", vvTotal)
		return t.Flush()
	},
	DisableAutoGenTag: true,
}
