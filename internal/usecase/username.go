package usecase

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	uuid "github.com/google/uuid"

	"github.com/arklim/social-platform-accounts/internal/core/port"
)

var usernameAdjectives = strings.Fields("swift bold brave bright calm clever cosmic crafty crisp daring deep divine eager elite epic fierce flash fleet flying ghost grand keen laser lunar major mega mighty mystic neon nimble noble prime proud quick rapid royal shadow sharp silent sleek solar solid sonic stark steel storm super titan ultra vital vivid wild wise")

var usernameNouns = strings.Fields("ace agent apex arrow atlas atom blade blaze bolt byte champ comet crow cyber delta drake eagle echo edge falcon flux force frost ghost hawk hero hunter jazz knight legend lynx meteor nebula ninja nova omega orbit phoenix pilot pixel prime pulse raven rebel rex rider rover sage scout shadow shark shield spark storm summit thunder tiger titan vector viking viper vision void wave wizard wolf zenith")

const usernameMaxTries = 30

// GenerateUsername produces a system-assigned display name in the form
// Adjective+Noun+two digits, retrying for uniqueness up to 30 times. When
// every candidate collides a UUID suffix guarantees uniqueness.
func GenerateUsername(ctx context.Context, users port.UserRepository, maxLength int, randInt func(n int) int) (string, error) {
	if randInt == nil {
		randInt = rand.Intn
	}

	var candidate string
	for i := 0; i < usernameMaxTries; i++ {
		adjective := capitalize(usernameAdjectives[randInt(len(usernameAdjectives))])
		noun := capitalize(usernameNouns[randInt(len(usernameNouns))])
		candidate = fmt.Sprintf("%s%s%d", adjective, noun, 10+randInt(90))

		if len(candidate) > maxLength {
			candidate = candidate[:maxLength]
		}

		exists, err := users.UsernameExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check username uniqueness: %w", err)
		}
		if !exists {
			return candidate, nil
		}
	}

	suffix := uuid.NewString()[:8]
	if len(candidate)+len(suffix) > maxLength {
		candidate = candidate[:maxLength-len(suffix)]
	}

	return candidate + suffix, nil
}

func capitalize(word string) string {
	if word == "" {
		return word
	}
	return strings.ToUpper(word[:1]) + word[1:]
}
