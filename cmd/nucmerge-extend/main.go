/*
  nucmerge-extend drives the cluster-to-alignment extension core: it reads
  a pair of FASTA files and the cluster file mgaps produced against them,
  extends every synteny's clusters into gapped alignments, and writes the
  resulting delta file (and, optionally, an annotated cluster file) for
  downstream tooling.
*/
package main

import (
	"flag"
	"fmt"
	"strings"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"

	"github.com/grailbio/nucmerge/cluster"
	"github.com/grailbio/nucmerge/clusterio"
	"github.com/grailbio/nucmerge/deltaio"
	"github.com/grailbio/nucmerge/extend"
	"github.com/grailbio/nucmerge/merge"
	"github.com/grailbio/nucmerge/rescore"
	"github.com/grailbio/nucmerge/scoring"
	"github.com/grailbio/nucmerge/seqio"
	"github.com/grailbio/nucmerge/validate"
)

var (
	refFasta      = flag.String("ref", "", "Reference (A) FASTA path")
	qryFasta      = flag.String("qry", "", "Query (B) FASTA path")
	clusterIn     = flag.String("clusters", "", "Input cluster file, as produced by mgaps")
	deltaOut      = flag.String("delta", "", "Output delta file path")
	clusterOut    = flag.String("cluster-out", "", "Optional annotated cluster file output path")
	matrixFile    = flag.String("matrix", "", "Optional substitution matrix file; uses a default nucleotide matrix when empty")
	matrixKind    = flag.String("matrix-type", "nucleotide", "Matrix kind when --matrix is set: 'nucleotide' or 'protein'")
	goodScore     = flag.Int("good-score", 1, "Per-residue score of a confidently matching column")
	contGapScore  = flag.Int("cont-gap-score", -2, "Per-residue score charged while bridging an unsupported gap")
	breakLen      = flag.Int("break-len", 200, "Inter-cluster gap length accepted without further scoring")
	maxAlignLen   = flag.Int("max-alignment-length", 10000, "Maximum length of a single extension on either strand")
	toSeqEnd      = flag.Bool("to-seqend", true, "Bias extensions toward consuming the rest of the sequence")
	validateCheck = flag.Bool("validate", true, "Run the post-extension validator over every finished alignment")
)

func main() {
	shutdown := grail.Init()
	defer shutdown()

	if flag.NArg() > 0 {
		a := flag.Args()
		log.Fatalf("unparsed flags, please check flag syntax: '%s'", strings.Join(a[len(a)-flag.NArg():], " "))
	}
	if *refFasta == "" || *qryFasta == "" || *clusterIn == "" || *deltaOut == "" {
		log.Fatalf("--ref, --qry, --clusters, and --delta are all required")
	}

	ctx := vcontext.Background()

	refRecords, err := seqio.ReadRecords(ctx, *refFasta)
	if err != nil {
		log.Fatalf("%v", err)
	}
	qryRecords, err := seqio.ReadRecords(ctx, *qryFasta)
	if err != nil {
		log.Fatalf("%v", err)
	}
	byID := func(records []*seqio.Record) map[string]*seqio.Record {
		m := make(map[string]*seqio.Record, len(records))
		for _, r := range records {
			m[r.ID] = r
		}
		return m
	}
	refByID, qryByID := byID(refRecords), byID(qryRecords)

	var sc *scoring.Context
	kind := scoring.Nucleotide
	if *matrixKind == "protein" {
		kind = scoring.Protein
	}
	if *matrixFile != "" {
		sc, err = scoring.Load(ctx, *matrixFile, kind, *goodScore, *contGapScore, *breakLen, *maxAlignLen, *toSeqEnd)
		if err != nil {
			log.Fatalf("%v", err)
		}
	} else {
		sc = scoring.NewDefaultNucleotideContext()
		sc.BreakLenValue = *breakLen
		sc.MaxAlignmentLength = *maxAlignLen
		sc.ToSeqEnd = *toSeqEnd
		sc.GoodScore = *goodScore
		sc.ContGapScore = *contGapScore
	}

	pairs, err := clusterio.ReadPairs(ctx, *clusterIn)
	if err != nil {
		log.Fatalf("%v", err)
	}

	dw, closeDelta, err := deltaio.Create(ctx, *deltaOut)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer func() {
		if err := closeDelta(); err != nil {
			log.Fatalf("%v", err)
		}
	}()

	var cw *clusterio.Writer
	if *clusterOut != "" {
		var closeCluster func() error
		cw, closeCluster, err = clusterio.Create(ctx, *clusterOut)
		if err != nil {
			log.Fatalf("%v", err)
		}
		defer func() {
			if err := closeCluster(); err != nil {
				log.Fatalf("%v", err)
			}
		}()
	}

	ext := extend.NewBandedExtender()
	var total merge.Stats

	for _, p := range pairs {
		Af, ok := refByID[p.AID]
		if !ok {
			log.Fatalf("nucmerge-extend: reference record %q not found in %s", p.AID, *refFasta)
		}
		Bf, ok := qryByID[p.BID]
		if !ok {
			log.Fatalf("nucmerge-extend: query record %q not found in %s", p.BID, *qryFasta)
		}

		rescorer := rescore.NewRescorer(sc)
		v := validate.New()

		alignments, stats, err := merge.Run(p.Synteny, Af.Residues, Bf.Residues, Bf.ID, sc, ext, rescorer, v)
		if err != nil {
			log.Fatalf("nucmerge-extend: %s vs %s: %v", p.AID, p.BID, err)
		}
		total.ClustersShadowed += stats.ClustersShadowed
		total.BackwardExtensions += stats.BackwardExtensions
		total.BackwardMerges += stats.BackwardMerges
		total.ForwardExtensions += stats.ForwardExtensions
		total.Overflows += stats.Overflows

		if *validateCheck {
			bFor := func(dir cluster.Dir) []byte { return rescorer.BufferFor(Bf.ID, Bf.Residues, dir) }
			if err := validate.Full(p.Synteny.Clusters, alignments, Af.Residues, bFor, sc); err != nil {
				log.Fatalf("nucmerge-extend: %s vs %s: %v", p.AID, p.BID, err)
			}
		}

		if err := dw.WritePair(p.AID, p.BID, Af.Len(), Bf.Len(), alignments); err != nil {
			log.Fatalf("%v", err)
		}
		if cw != nil {
			if err := cw.WriteSynteny(p.AID, p.BID, Af.Len(), Bf.Len(), p.Synteny); err != nil {
				log.Fatalf("%v", err)
			}
		}
		log.Debug.Printf("nucmerge-extend: %s vs %s: %d alignments, %d clusters shadowed", p.AID, p.BID, len(alignments), stats.ClustersShadowed)
	}

	fmt.Printf(
		"clusters shadowed: %d  backward extensions: %d (merges: %d)  forward extensions: %d  overflows: %d\n",
		total.ClustersShadowed, total.BackwardExtensions, total.BackwardMerges, total.ForwardExtensions, total.Overflows,
	)
}
