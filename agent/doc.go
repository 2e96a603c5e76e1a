// Package agent provides ready-made implementations of the core.Agent
// capability interface.
//
//   - ModelAgent replies through a language model, mapping the shared
//     conversation into a normalized model request, recording the tool calls
//     the model emits and executing those with a registered tool.
//   - UserProxyAgent hands the turn to a human (or any input function).
//   - ModelSelector is not an agent but a team.Selector: it asks a model
//     which roster member should speak next.
//
// All implementations keep conversational state in the shared context only,
// so a single instance can safely participate in concurrent runs on separate
// teams.
package agent
