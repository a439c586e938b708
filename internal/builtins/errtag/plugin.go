// Package errtag implements the tag-matching rule behind '姑妄行此 ...
// 豈 tag 之禍歟': whether a thrown error's tag matches a catch clause's
// declared tag. A plain string-matching predicate, since this evaluator
// represents a thrown tag as its already-rendered display string rather
// than a boxed error object.
package errtag

// Matches reports whether a catch clause declared for want catches an
// error actually thrown with tag got. Wenyan tags match by exact text;
// there is no tag hierarchy or wildcard.
func Matches(want, got string) bool {
	return want == got
}
