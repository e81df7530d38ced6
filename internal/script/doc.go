// Package script parses and runs line-oriented query scripts.
//
// Each non-blank line is one statement, optionally followed by an expected
// outcome after "=>":
//
//	# comments start with # or //
//	test REF int32&                 => true
//	test CONVERT Circle*; Shape*    => true
//	transform CONST|REF int32       => int32 const&
//	transform ARR int32; 0          => int32[0]
//	ptr+ int32; 2                   => int32**
//	ptr- int32*; 2                  => error(DEPTH_UNDERFLOW)
//	arr int32; unbounded; 4         => int32[][4]
//	size Circle                     => 24
//	size int32[0]; true             => 0
//	catch Shape const&; Circle      => true
//
// Operands after the first are separated by ";" because descriptors
// contain spaces. Run evaluates statements through an engine.Engine and
// reports which expectations failed.
package script
