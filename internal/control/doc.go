// Package control turns pointer gestures into simulation requests.
//
// A [Pointer] translates press, drag and release into pulse and weaken
// requests on anything implementing [Target], which the simulation does:
//
//	p := control.NewPointer(params)
//	p.Down(x, y)  // full pulse + aggressive weaken
//	p.Move(x, y)  // drag pulse + gentle weaken while pressed
//	p.Up()
//
// Both viewers and the scenario runner drive the simulation this way.
package control
