// Package role classifies a node as leader or follower and gates which
// operations each role may serve. The role is fixed at startup for the
// process lifetime; there is no promotion or demotion.
package role
