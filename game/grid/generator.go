package grid

import (
	"fmt"
	"strings"
	"sync"
)

type (
	// Generator creates grids.  It is safe for concurrent use.
	Generator struct {
		mu sync.Mutex
		Config
	}

	// Config contains the properties to create a generator.
	Config struct {
		// Letters is a string of all the upper case letters that can be drawn.
		// If not specified, the default letters will be used.
		// If a letter should be drawn more often, it should be present multiple times.
		// For example, the Letters "AABCCC" draw twice as many As as Bs.
		Letters string
		// IntnFunc returns a random, non-negative number less than n.
		IntnFunc func(n int) int
		// ShuffleFunc randomizes the order of n elements using the swap function.
		ShuffleFunc func(n int, swap func(i, j int))
	}
)

// defaultLetters is the letter pool if not specified.  Vowels and common consonants are frequent and Q, J, X, and Z are rare.
const defaultLetters = "AAAAAAAAABBCCCDDDDEEEEEEEEEEEEFFGGGHHIIIIIIIIIJKLLLLMMNNNNNNOOOOOOOOPPQRRRRRRSSSSTTTTTTUUUUVVWWXYYZ"

// onboardingGrids are used for the first games a player plays so they find words easily.
var onboardingGrids = [...]Grid{
	mustParse("CATSE", "DOGRA", "BEINT", "HOMEL", "SUNPR"),
	mustParse("STARE", "LIONP", "WATER", "HOMEB", "CLDAY"),
	mustParse("PLANT", "GREAT", "SHINE", "BOATD", "MUSIC"),
}

// NumOnboardingGrids is the number of games played before grids become random.
const NumOnboardingGrids = len(onboardingGrids)

// NewGenerator creates a grid generator.
func (cfg Config) NewGenerator() (*Generator, error) {
	if len(cfg.Letters) == 0 {
		cfg.Letters = defaultLetters
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("creating grid generator: validation: %w", err)
	}
	g := Generator{
		Config: cfg,
	}
	return &g, nil
}

// validate ensures the configuration has no errors.
func (cfg Config) validate() error {
	switch {
	case cfg.IntnFunc == nil:
		return fmt.Errorf("random int func required")
	case cfg.ShuffleFunc == nil:
		return fmt.Errorf("shuffle func required")
	}
	for i := 0; i < len(cfg.Letters); i++ {
		if !isLetter(cfg.Letters[i]) {
			return fmt.Errorf("letter must be uppercase and between A and Z: %q", cfg.Letters[i])
		}
	}
	return nil
}

// Weighted draws each cell from the letter pool.  Letters are replaced after they are drawn.
func (gen *Generator) Weighted() Grid {
	gen.mu.Lock()
	defer gen.mu.Unlock()
	var g Grid
	for i := 0; i < NumCells; i++ {
		c := coordAt(i)
		g[c.Row][c.Col] = gen.draw()
	}
	return g
}

// IsBeginner determines if a player who has played the number of games still gets onboarding grids.
func IsBeginner(gamesPlayed int) bool {
	return 0 <= gamesPlayed && gamesPlayed < NumOnboardingGrids
}

// ForPlayer creates the onboarding grid for the player's next game, or a weighted grid for experienced players.
func (gen *Generator) ForPlayer(gamesPlayed int) Grid {
	if IsBeginner(gamesPlayed) {
		return onboardingGrids[gamesPlayed]
	}
	return gen.Weighted()
}

// ForDuel creates a grid shared by two players.  The first beginner's onboarding grid is used.
func (gen *Generator) ForDuel(gamesPlayed1, gamesPlayed2 int) Grid {
	switch {
	case IsBeginner(gamesPlayed1):
		return onboardingGrids[gamesPlayed1]
	case IsBeginner(gamesPlayed2):
		return onboardingGrids[gamesPlayed2]
	}
	return gen.Weighted()
}

// Challenge creates a grid that has every letter of the target word, including repeated letters.
// The letters are placed on random cells, so they might not be next to each other.
// Only the first NumCells letters of the target are placed.
func (gen *Generator) Challenge(target string) Grid {
	gen.mu.Lock()
	defer gen.mu.Unlock()
	positions := make([]int, NumCells)
	for i := range positions {
		positions[i] = i
	}
	gen.ShuffleFunc(len(positions), func(i, j int) {
		positions[i], positions[j] = positions[j], positions[i]
	})
	letters := targetLetters(target)
	var g Grid
	for i, p := range positions {
		c := coordAt(p)
		switch {
		case i < len(letters):
			g[c.Row][c.Col] = letters[i]
		default:
			g[c.Row][c.Col] = gen.draw()
		}
	}
	return g
}

// draw picks a random letter from the pool.  The lock must be held.
func (gen *Generator) draw() byte {
	i := gen.IntnFunc(len(gen.Letters))
	return gen.Letters[i]
}

// targetLetters upper cases the letters of the word, dropping other characters.
func targetLetters(target string) []byte {
	upper := strings.ToUpper(target)
	letters := make([]byte, 0, len(upper))
	for i := 0; i < len(upper) && len(letters) < NumCells; i++ {
		if isLetter(upper[i]) {
			letters = append(letters, upper[i])
		}
	}
	return letters
}

func mustParse(rows ...string) Grid {
	g, err := Parse(rows...)
	if err != nil {
		panic(err)
	}
	return *g
}
