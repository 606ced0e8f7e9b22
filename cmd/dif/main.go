package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"

	"github.com/dustin/go-humanize"
	"github.com/facette/natsort"
	"github.com/kohkubo/duplicate-image-finder/dif"
	"github.com/schollz/progressbar/v3"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

const (
	appName    = "dif"
	appVersion = "1.0.2"
)

var fs *pflag.FlagSet

func main() {
	fs = pflag.NewFlagSet(appName, pflag.ContinueOnError)

	// Handle options
	dir := fs.StringP("dir", "d", "", "target directory to search duplicate images")
	algorithm := fs.String("algorithm", "sha256", "digest algorithm (sha256, sha1, md5, highway)")
	workers := fs.IntP("workers", "w", 0, "number of hashing workers")
	minFileSize := fs.Int64P("min-size", "s", 0, "minimum file size to consider")
	extensions := fs.StringArrayP("ext", "e", nil, "image extensions to scan (default jpg, jpeg, png, webp)")
	excludes := fs.StringArrayP("exclude", "x", nil, "glob patterns to skip, relative to the target directory")
	sortBy := fs.String("sort", "total", "sort duplicate groups by [total|size|count]")
	verbose := fs.BoolP("verbose", "v", false, "Verbose")
	version := fs.Bool("version", false, "Version")

	fs.Usage = printHelp
	if err := fs.Parse(os.Args[1:]); err != nil {
		return
	}

	if *version {
		fmt.Printf("%s %s\n", appName, appVersion)
		return
	}

	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	if *dir == "" {
		printHelp()
		return
	}

	runtime.GOMAXPROCS(runtime.NumCPU())

	bar := progressbar.Default(-1, "hashing")
	finder, err := dif.NewDuplicateImageFinder(dif.Options{
		Algorithm:   *algorithm,
		Workers:     *workers,
		MinFileSize: *minFileSize,
		Extensions:  *extensions,
		Excludes:    *excludes,
		Progress: func(string) {
			_ = bar.Add(1)
		},
	})
	if err != nil {
		log.Error(err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result, err := finder.Scan(ctx, *dir)
	if err != nil {
		log.Error(err)
		os.Exit(1)
	}
	_ = bar.Finish()
	fmt.Println()

	display(result, dif.GetSortValue(*sortBy))
}

func display(result *dif.ScanResult, sortBy int) {
	if result.Cancelled {
		fmt.Println("scan cancelled, partial result:")
	}

	dif.SortGroups(result.Groups, sortBy)
	for no, group := range result.Groups {
		fmt.Printf("no=#%d, digest=%s, unit_size=%s, count=%d, total_size=%s\n",
			no+1, group.Digest, humanize.Bytes(uint64(group.Size)), len(group.Paths), humanize.Bytes(uint64(group.TotalSize)))
		paths := append([]string(nil), group.Paths...)
		natsort.Sort(paths)
		for _, path := range paths {
			fmt.Printf("    - %s\n", path)
		}
	}

	for _, fe := range result.Errors {
		log.Errorf("failed to process [%s]: %v", fe.Path, fe.Err)
	}

	fmt.Printf("scanned %d files, found %d duplicate groups in %.2fs\n",
		result.Scanned, len(result.Groups), result.Elapsed.Seconds())
}

func init() {
	log.SetFormatter(&log.TextFormatter{
		DisableColors: true,
		FullTimestamp: true,
	})
}

func printHelp() {
	println("dif - Duplicate image finder")
	println("dif [options]")
	println("ex) dif -d /data/photos --sort count")
	fs.PrintDefaults()
}
