package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path"
	"runtime/pprof"
	"strconv"
	"time"

	"github.com/spacemeshos/powgate/shared"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		os.Exit(1)
	}

	if cfg.CPU {
		dir, err := os.Getwd()
		if err != nil {
			log.Fatal("cant get current dir", err)
		}

		profFilePath := path.Join(dir, "./CPU.prof")
		fmt.Printf("CPU profile: %s\n", profFilePath)

		f, err := os.Create(profFilePath)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
	}

	fmt.Printf("Computing %d serial sha-256 digests...\n", cfg.Hashes)
	digest := "Seed data goes here"
	t1 := time.Now()
	for i := uint64(0); i < cfg.Hashes; i++ {
		digest = shared.SHA256Hex(digest)
	}
	e := time.Since(t1)
	fmt.Printf("Final digest: %s took: %s. Hash-rate: %.0f hashes-per-sec\n", digest, e, float64(cfg.Hashes)/e.Seconds())

	ctx := context.Background()
	for difficulty := uint(1); difficulty <= cfg.MaxDifficulty; difficulty++ {
		var nonces uint64
		t1 = time.Now()
		for round := 0; round < cfg.Rounds; round++ {
			previousProof := strconv.Itoa(round)
			previousHash := shared.SHA256Hex(previousProof)
			nonce, err := shared.FindProof(ctx, shared.SHA256Hex, previousProof, previousHash, difficulty)
			if err != nil {
				log.Fatal("failed to find proof: ", err)
			}
			if err := shared.VerifyProof(shared.SHA256Hex, previousProof, strconv.FormatUint(nonce, 10), previousHash, difficulty); err != nil {
				log.Fatal("found proof does not verify: ", err)
			}
			nonces += nonce + 1
		}
		e = time.Since(t1)
		fmt.Printf("difficulty %d: %.1f attempts per proof, %s per proof\n",
			difficulty, float64(nonces)/float64(cfg.Rounds), e/time.Duration(cfg.Rounds))
	}
}
