/*
Package piu normalizes context-free grammars and predicts input for them.

Grammars are brought into Greibach Normal Form by a pipeline of classical
transformations, and the GNF form then drives an incremental matcher which
consumes input one symbol at a time, tracking every viable derivation in
parallel. Package structure is as follows:

■ grammar: Package grammar holds rules and grammars, together with the
simplification passes (start isolation, removal of useless symbols, null- and
unit-productions). Sub-packages cnf and gnf convert to Chomsky and Greibach
Normal Form, sub-package bnf reads a small textual grammar notation.

■ predict: Package predict implements the incremental GNF-driven matcher.

The base package contains the grammar element type, which is used throughout
all the other packages.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package piu
