// Package nav reads the navigation tree of a documentation site.
//
// The tree is embedded in the root page of the site as nested lists:
//
//	<nav class="nav-menu">
//	  <ul class="nav-list">
//	    <li class="nav-item" data-depth="0">
//	      <a href="index.html">Overview</a>
//	      <ul class="nav-list">
//	        <li class="nav-item" data-depth="1">...</li>
//	      </ul>
//	    </li>
//	  </ul>
//	</nav>
//
// Parser turns that markup into a model.NavItem tree and Index flattens the
// tree into the ordered reference list and lookup map used by the rest of
// the build.
package nav
