package lending

import "github.com/PawelKwidzinski/console-and-games-rental/model"

// Authorization predicates. Pure functions of the loaded state and the acting
// user, shared between the engine and the test oracles. Role is a computed
// relation: the same user can be owner of one game and borrower of another.

func IsOwner(g *model.Game, userID int64) bool { return g.OwnerID == userID }

func IsLendable(g *model.Game) bool { return !g.Archived && g.Shareable }
