package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/UnownHash/ParcelFinder/geo"
	"github.com/UnownHash/ParcelFinder/index"
	"github.com/UnownHash/ParcelFinder/parcel_loader"
	"github.com/UnownHash/ParcelFinder/parcels"
)

type failure struct {
	parcel *parcels.Parcel
	kind   string
	reason string
}

func checkParcels(collection *parcels.Collection, verbose bool, output io.Writer) []failure {
	var failures []failure

	for _, parcel := range collection.All() {
		geometry, err := geo.ParseGeometry(parcel.GeometryRaw)
		if err != nil {
			kind := "unknown"
			var geomErr *geo.GeometryError
			if errors.As(err, &geomErr) {
				kind = geomErr.KindName()
			}
			failures = append(failures, failure{parcel, kind, err.Error()})
			continue
		}
		if verbose {
			fmt.Fprintf(output, "ok   %s: %s, %d point(s), %.1f m2\n",
				parcel.FullName(),
				geometry.Kind,
				geometry.NumPoints(),
				geo.AreaM2(geometry),
			)
		}
	}

	return failures
}

func printFailures(failures []failure, output io.Writer) {
	byKind := make(map[string][]failure)
	for _, f := range failures {
		byKind[f.kind] = append(byKind[f.kind], f)
	}

	kinds := make([]string, 0, len(byKind))
	for kind := range byKind {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)

	for _, kind := range kinds {
		fmt.Fprintf(output, "%s (%d):\n", kind, len(byKind[kind]))
		for _, f := range byKind[kind] {
			fmt.Fprintf(output, "  %s: %s\n", f.parcel.FullName(), f.reason)
		}
	}
}

func main() {
	flagSet := flag.NewFlagSet(os.Args[0], flag.ExitOnError)

	helpFlag := flagSet.Bool("help", false, "help!")
	flagSet.BoolVar(helpFlag, "h", false, "help!")
	filenameFlag := flagSet.String("f", "", "parcels JSON file to check")
	verboseFlag := flagSet.Bool("v", false, "print every parcel, not just failures")
	latFlag := flagSet.Float64("lat", 0, "with -lng, also report which parcel contains this point")
	lngFlag := flagSet.Float64("lng", 0, "with -lat, also report which parcel contains this point")

	flagSet.Parse(os.Args[1:])

	if *helpFlag || *filenameFlag == "" {
		fmt.Printf("Usage: %s -f <parcels.json> [-v] [-lat <lat> -lng <lng>]\n\n", os.Args[0])
		fmt.Printf("Options:\n")
		flagSet.SetOutput(os.Stdout)
		flagSet.PrintDefaults()
		if *helpFlag {
			os.Exit(0)
		}
		os.Exit(2)
	}

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	ctx := context.Background()

	loader := parcel_loader.NewFileParcelLoader(logger, *filenameFlag)
	expedientes, err := loader.LoadExpedientes(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	collection := parcels.NewCollection(logger, expedientes)

	failures := checkParcels(collection, *verboseFlag, os.Stdout)
	printFailures(failures, os.Stdout)

	fmt.Printf("%d expediente(s), %d parcel(s), %d failed\n", len(expedientes), collection.Len(), len(failures))

	var latSet, lngSet bool
	flagSet.Visit(func(f *flag.Flag) {
		latSet = latSet || f.Name == "lat"
		lngSet = lngSet || f.Name == "lng"
	})

	if latSet && lngSet {
		config := index.GetDefaultConfig()
		config.CacheMaxPoints = 0
		idx, err := index.NewParcelIndex(logger, config)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(2)
		}
		defer idx.Close()

		if _, err := idx.Rebuild(ctx, collection.All()); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(2)
		}

		if ref, found := idx.FindContainingParcel(*latFlag, *lngFlag); found {
			fmt.Printf("(%f, %f) is in %s\n", *latFlag, *lngFlag, collection.Get(ref).FullName())
		} else {
			fmt.Printf("(%f, %f) is not in any parcel\n", *latFlag, *lngFlag)
		}
	}

	if len(failures) > 0 {
		os.Exit(1)
	}
}
