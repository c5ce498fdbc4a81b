/*
Package authstore persists per-profile provider credentials as a bare JSON
object, not wrapped in an envelope: the file at <profile>/auth.json is
itself {"anthropic": {"type": "api_key", "key": "..."}, ...}.

Summary never returns the secret value, only the entry's type
discriminator, so it is safe to log or display. After every mutation the
file is rewritten owner-only (0600) if non-empty, or removed entirely if
the resulting map is empty — an absent file and an empty credential set
are the same state.

Import applies source-wins conflict resolution: a provider present in both
the imported file and the target profile ends up with the imported value.
This was an explicitly open question in the distilled design; source-wins
was chosen because importing is a user-initiated "adopt this file" action.
*/
package authstore
