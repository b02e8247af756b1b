// merkle-root computes the Merkle root of items given as arguments, or
// as lines on stdin when no arguments are present.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/joseferreira/Merkle-Digest-Service/internal/domain"
	"github.com/joseferreira/Merkle-Digest-Service/internal/hashing"
	"github.com/joseferreira/Merkle-Digest-Service/internal/merkle"
)

func main() {
	algorithm := flag.String("algo", hashing.DefaultAlgorithm, "hash algorithm (sha256 or blake3)")
	workers := flag.Int("workers", 0, "hash pairs within a layer across this many goroutines")
	showLayers := flag.Bool("layers", false, "print every layer, leaves first")
	flag.Parse()

	data := flag.Args()
	if len(data) == 0 {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			data = append(data, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			logrus.WithError(err).Fatal("Failed to read items from stdin")
		}
	}

	hash, err := hashing.ForAlgorithm(*algorithm)
	if err != nil {
		logrus.WithError(err).Fatal("Unknown hash algorithm")
	}

	tree, err := merkle.New(domain.ItemsFromStrings(data),
		merkle.WithHash(hash), merkle.WithWorkers(*workers))
	if err != nil {
		logrus.WithError(err).Fatal("Failed to build tree")
	}

	fmt.Println("---------------------------------------")
	fmt.Printf("Merkle Root: %s\n", tree.Root())
	fmt.Printf("Tree Depth:  %d levels\n", tree.Depth())
	fmt.Println("---------------------------------------")

	if *showLayers {
		for i, layer := range tree.Layers() {
			fmt.Printf("Layer %d:\n", i)
			for _, fp := range layer {
				fmt.Printf("  %s\n", fp)
			}
		}
	}
}
