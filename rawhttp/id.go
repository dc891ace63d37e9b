package rawhttp

import "github.com/google/uuid"

func genID() string {
	return uuid.NewString()
}
